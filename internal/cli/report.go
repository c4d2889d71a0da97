// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/locbeacon/internal/models"
)

type reportOptions struct {
	server    string
	userID    string
	userName  string
	latitude  float64
	longitude float64
	accuracy  float64
	timeout   time.Duration
}

func newReportCommand(_ Dependencies) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Send one location report to a running server.",
		Example: "  locbeacon report --user-id u1 --name Alice --lat 12.97 --lng 77.59\n" +
			"  locbeacon report --server http://beacon.internal:8000 --user-id probe --lat 0 --lng 0",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := buildReportBody(cmd, opts)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return sendReport(ctx, cmd.OutOrStdout(), opts.server, body)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.server, "server", "http://127.0.0.1:8000", "Server base URL.")
	flags.StringVar(&opts.userID, "user-id", "", "User id to report as. [required]")
	flags.StringVar(&opts.userName, "name", "", "Display name.")
	flags.Float64Var(&opts.latitude, "lat", 0, "Latitude in degrees. [required]")
	flags.Float64Var(&opts.longitude, "lng", 0, "Longitude in degrees. [required]")
	flags.Float64Var(&opts.accuracy, "accuracy", 0, "Horizontal accuracy in meters.")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout.")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")

	return cmd
}

func buildReportBody(cmd *cobra.Command, opts *reportOptions) ([]byte, error) {
	report := models.LocationReport{
		UserID:    opts.userID,
		UserName:  opts.userName,
		Latitude:  opts.latitude,
		Longitude: opts.longitude,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if cmd.Flags().Changed("accuracy") {
		report.Accuracy = models.Float64(opts.accuracy)
	}
	return json.Marshal(&report)
}

// sendReport posts body to /report and prints the server's reply.
func sendReport(ctx context.Context, out io.Writer, server string, body []byte) error {
	url := strings.TrimSuffix(server, "/") + "/report"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	_, _ = fmt.Fprintln(out, strings.TrimSpace(string(reply)))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server rejected report: %s", resp.Status)
	}
	return nil
}
