package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfwatch/shelfwatch/pkg/inventory"
	"github.com/shelfwatch/shelfwatch/pkg/model"
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Manage inventory items",
}

var stockLoadCmd = &cobra.Command{
	Use:   "load FILE",
	Short: "Seed inventory from a YAML catalog file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStockLoad,
}

var stockSetCmd = &cobra.Command{
	Use:   "set ID",
	Short: "Create or update an item's stock",
	Args:  cobra.ExactArgs(1),
	RunE:  runStockSet,
}

var stockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inventory items",
	RunE:  runStockList,
}

var stockRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runStockRm,
}

func init() {
	rootCmd.AddCommand(stockCmd)
	stockCmd.AddCommand(stockLoadCmd)
	stockCmd.AddCommand(stockSetCmd)
	stockCmd.AddCommand(stockListCmd)
	stockCmd.AddCommand(stockRmCmd)

	stockSetCmd.Flags().StringP("name", "n", "", "Display name")
	stockSetCmd.Flags().IntP("count", "c", 0, "Current stock count")
	_ = stockSetCmd.MarkFlagRequired("count")

	stockListCmd.Flags().Bool("low", false, "Only items below the threshold")
}

func runStockLoad(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := inventory.LoadCatalog(args[0])
	if err != nil {
		return err
	}

	store, err := initStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := inventory.Seed(ctx, store, cat); err != nil {
		return err
	}

	fmt.Printf("Loaded %d items from %s\n", len(cat.Items), args[0])
	return nil
}

func runStockSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	count, _ := cmd.Flags().GetInt("count")
	if count < 0 {
		return fmt.Errorf("stock count must be non-negative")
	}

	store, err := initStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	item := &model.Item{ID: args[0], Name: name, Stock: count}
	if err := store.UpsertItem(ctx, item); err != nil {
		return err
	}

	fmt.Printf("%s: %d\n", item.DisplayName(), item.Stock)
	return nil
}

func runStockList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lowOnly, _ := cmd.Flags().GetBool("low")

	store, err := initStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var items []model.Item
	if lowOnly {
		items, err = store.LowStockItems(ctx, cfg.Alert.Threshold)
	} else {
		items, err = store.ListItems(ctx)
	}
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("No items.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTOCK\tUPDATED")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			it.ID, it.Name, it.Stock, it.UpdatedAt.Local().Format(time.RFC3339))
	}
	return w.Flush()
}

func runStockRm(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.DeleteItem(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("Removed %s\n", args[0])
	return nil
}
