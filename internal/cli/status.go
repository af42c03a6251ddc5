package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check arbitrage engine status",
	Long: `Check the current status of the arbitrage engine, including
breaker state and queue depth, by polling its status endpoint.`,
	RunE: runStatus,
}

var (
	jsonOutput    bool
	watchMode     bool
	watchInterval time.Duration
)

// EngineStatus mirrors internal/app's statusResponse payload.
type EngineStatus struct {
	Status             string    `json:"status"`
	Uptime             string    `json:"uptime"`
	BreakerState       string    `json:"breaker_state"`
	QueueSize          int       `json:"queue_size"`
	SuccessRatePercent string    `json:"success_rate_percent"`
	Timestamp          time.Time `json:"timestamp"`
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "output in JSON format")
	statusCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "watch mode (continuous updates)")
	statusCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Second, "watch interval duration")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if watchMode {
		return runWatchStatus()
	}

	status, err := getEngineStatus()
	if err != nil {
		return fmt.Errorf("failed to get engine status: %w", err)
	}

	if jsonOutput {
		return outputJSON(status)
	}

	return outputFormatted(status)
}

func runWatchStatus() error {
	fmt.Printf("Watching arbitrage engine status (interval: %v)\n", watchInterval)
	fmt.Println("Press Ctrl+C to stop watching...")
	fmt.Println()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	if err := showCurrentStatus(); err != nil {
		return err
	}

	for range ticker.C {
		fmt.Print("\033[H\033[2J") // Clear screen
		if err := showCurrentStatus(); err != nil {
			return err
		}
	}
	return nil
}

func showCurrentStatus() error {
	status, err := getEngineStatus()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return nil
	}

	return outputFormatted(status)
}

func getEngineStatus() (*EngineStatus, error) {
	host := viper.GetString("server.host")
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	port := viper.GetInt("server.port")
	if port == 0 {
		port = 8080
	}

	url := fmt.Sprintf("http://%s:%d/status", host, port)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		// Engine might not be running
		return &EngineStatus{
			Status:    "offline",
			Timestamp: time.Now(),
		}, nil
	}
	defer resp.Body.Close()

	var status EngineStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}

	return &status, nil
}

func outputJSON(status *EngineStatus) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(status)
}

func outputFormatted(status *EngineStatus) error {
	fmt.Printf("Atomic Arbitrage Engine Status\n")
	fmt.Printf("===============================\n\n")

	fmt.Printf("Status:        %s\n", status.Status)
	if status.Uptime != "" {
		fmt.Printf("Uptime:        %s\n", status.Uptime)
	}
	if status.BreakerState != "" {
		fmt.Printf("Breaker:       %s\n", status.BreakerState)
	}
	fmt.Printf("Queue size:    %d\n", status.QueueSize)
	if status.SuccessRatePercent != "" {
		fmt.Printf("Success rate:  %s\n", status.SuccessRatePercent)
	}
	fmt.Printf("Timestamp:     %s\n", status.Timestamp.Format(time.RFC3339))

	return nil
}
