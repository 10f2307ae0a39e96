package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	synchub "testimonials/internal/sync"
	"testimonials/pkg/logging"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP sync server address")
	pretty := flag.Bool("pretty", true, "pretty print JSON events")
	flag.Parse()

	logger, err := logging.New("info", false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for ctx.Err() == nil {
		if err := run(ctx, *addr, *pretty, os.Stdout, logger); err != nil && ctx.Err() == nil {
			logger.Warn("disconnected", zap.String("addr", *addr), zap.Error(err))
		}
		select {
		case <-ctx.Done():
		case <-time.After(time.Second): // reconnect
		}
	}
}

func run(ctx context.Context, addr string, pretty bool, out io.Writer, logger *zap.Logger) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	logger.Info("connected", zap.String("addr", addr))

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		printLine(out, sc.Bytes(), pretty)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}

// printLine renders review events as one summary line; anything else is
// echoed, indented when it is JSON.
func printLine(out io.Writer, line []byte, pretty bool) {
	if !pretty {
		fmt.Fprintln(out, string(line))
		return
	}

	var ev synchub.ReviewEvent
	if err := json.Unmarshal(line, &ev); err == nil && strings.HasPrefix(ev.Type, "review.") {
		fmt.Fprintf(out, "%s %-15s id=%s index=%d rating=%d\n",
			ev.At.Local().Format(time.TimeOnly), ev.Type, ev.ReviewID, ev.Index, ev.Rating)
		return
	}

	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		fmt.Fprintln(out, string(line))
		return
	}
	b, _ := json.MarshalIndent(obj, "", "  ")
	fmt.Fprintln(out, string(b))
}
