package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/credential"
	"github.com/sells-group/prospect-cli/internal/model"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show per-credential daily usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		pool, err := credential.NewPool(ctx, st, credential.Config{
			DailyCap:            cfg.Quota.DailyCap,
			WarnThreshold:       cfg.Quota.WarnThreshold,
			ResetUTCOffsetHours: cfg.Quota.ResetUTCOffsetHours,
		})
		if err != nil {
			return err
		}

		records := pool.Records()
		if len(records) == 0 {
			fmt.Println("No credentials imported. Run: prospect-cli keys import <csv>")
			return nil
		}
		fmt.Printf("%-38s %-12s %s\n", "ID", "USES TODAY", "LAST USED")
		for _, r := range records {
			fmt.Printf("%-38s %3d/%-8d %s\n", r.ID, r.UsesToday, cfg.Quota.DailyCap, r.LastUsedDate)
		}
		return nil
	},
}

var keysImportCmd = &cobra.Command{
	Use:   "import <csv>",
	Short: "Replace the credential pool from a CSV of api_key,cse_id pairs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		records, err := readCredentialCSV(args[0])
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SaveCredentials(ctx, records); err != nil {
			return err
		}
		fmt.Printf("Imported %d credentials\n", len(records))
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysImportCmd)
	rootCmd.AddCommand(keysCmd)
}

func readCredentialCSV(path string) ([]model.CredentialRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "keys: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "keys: read csv")
	}
	if len(rows) < 2 {
		return nil, eris.New("keys: csv has no credential rows")
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	keyIdx, ok := col["api_key"]
	if !ok {
		return nil, eris.New("keys: csv has no api_key column")
	}
	scopeIdx, ok := col["cse_id"]
	if !ok {
		return nil, eris.New("keys: csv has no cse_id column")
	}

	records := make([]model.CredentialRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if keyIdx >= len(row) || scopeIdx >= len(row) {
			continue
		}
		apiKey := strings.TrimSpace(row[keyIdx])
		if apiKey == "" {
			continue
		}
		records = append(records, model.CredentialRecord{
			ID:          uuid.NewString(),
			APIKey:      apiKey,
			SearchScope: strings.TrimSpace(row[scopeIdx]),
		})
	}
	if len(records) == 0 {
		return nil, eris.New("keys: csv has no usable rows")
	}
	return records, nil
}
