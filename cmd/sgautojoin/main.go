package main

import (
	"context"
	"sgautojoin/cmd/sgautojoin/commands"
	"sgautojoin/lib/serviceutil"
	"sgautojoin/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	// telemetry.json5 is optional, runs without it are just untraced
	err := telemetry.SetupFromEnv(ctx, "sgautojoin")
	if err == nil {
		defer telemetry.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	}

	commands.ExecuteContext(ctx)
}
