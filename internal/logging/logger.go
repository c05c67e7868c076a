package logging

import (
	"log/slog"
	"os"
)

// Setup installs the boot logger: JSON to stdout at INFO. Once the database
// is connected, main replaces it with a MultiHandler that adds the
// system_logs sink for ERROR records.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
