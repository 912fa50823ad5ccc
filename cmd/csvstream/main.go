package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"k8s.io/klog/v2"

	"github.com/oleg578/csvstream/cmd/csvstream/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := app.NewCSVStreamCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		klog.ErrorS(err, "csvstream failed")
		klog.Flush()
		stop()
		os.Exit(1)
	}
	klog.Flush()
}
