package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wikicull/wikicull/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wikicull HTTP API server",
	Long: `Serve exposes the analysis engine over HTTP: analyses run as
cancellable background jobs, with progress available over REST and
WebSocket, and finished analyses stored for later retrieval.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger("Server")

	s, err := server.NewServer(server.Config{
		ListenAddr: serveAddr,
		AppConfig:  loadConfig(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	httpSrv := s.HTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "wikicull API listening on %s\n", serveAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
