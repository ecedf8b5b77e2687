package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/honeynil/LavenderPOS/internal/infrastructure/kairos"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd(out io.Writer) *cobra.Command {
	var gallery, url string

	cmd := &cobra.Command{
		Use:   "kairos-upload <image> <subject>",
		Short: "Enroll a face image into a Kairos gallery",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := kairos.NewClient(&http.Client{Timeout: 30 * time.Second}, url, kairos.Credentials{
				AppID:  envOr("KAIROS_APP_ID", "<APP ID>"),
				AppKey: envOr("KAIROS_APP_KEY", "<APP KEY>"),
			})

			status, err := client.EnrollFile(cmd.Context(), args[0], args[1], gallery)
			if err != nil || status != http.StatusOK {
				fmt.Fprintln(out, "Fail")
				return nil
			}
			fmt.Fprintln(out, "OK")
			return nil
		},
	}

	cmd.Flags().StringVar(&gallery, "gallery", envOr("KAIROS_GALLERY", "<GALLERY NAME>"), "Gallery to enroll into")
	cmd.Flags().StringVar(&url, "url", envOr("KAIROS_URL", kairos.DefaultEnrollURL), "Enrollment endpoint")

	return cmd
}
