package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show recently sent alerts",
	RunE:  runAlerts,
}

func init() {
	rootCmd.AddCommand(alertsCmd)

	alertsCmd.Flags().IntP("limit", "l", 20, "Maximum entries to show")
}

func runAlerts(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, err := store.ListAlerts(ctx, limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No alerts sent yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SENT\tSTREAM\tRECIPIENT\tITEMS")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			r.SentAt.Local().Format(time.RFC3339), r.Stream, r.Recipient, r.ItemCount)
	}
	return w.Flush()
}
