// Command bufpoolctl is a line-oriented harness for driving a single
// buffer pool against a real page file: pin/unpin pages, write and
// dirty them, force or flush, and inspect frame state. It exists for
// manual exercise of the core — the buffer pool itself has no network
// surface or multi-client protocol (concurrency above a single pool is
// explicitly out of scope).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/tuannm99/bufcache/internal/bufcfg"
	"github.com/tuannm99/bufcache/internal/bufferpool"
	"github.com/tuannm99/bufcache/internal/pagefile"
)

func main() {
	var cfgPath string
	var create bool
	flag.StringVar(&cfgPath, "config", "bufcache.yaml", "path to bufcache yaml config")
	flag.BoolVar(&create, "create", false, "create the backing page file if it does not exist")
	flag.Parse()

	cfg, err := bufcfg.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	policy, err := cfg.Policy()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if create {
		if _, err := os.Stat(cfg.Storage.File); errors.Is(err, os.ErrNotExist) {
			if err := pagefile.Create(cfg.Storage.File); err != nil {
				log.Fatalf("create page file: %v", err)
			}
		}
	}

	pool, err := bufferpool.New(cfg.Storage.File, cfg.Pool.Capacity, policy)
	if err != nil {
		log.Fatalf("init pool: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, pool); err != nil {
		log.Fatalf("bufpoolctl: %v", err)
	}
}

func run(ctx context.Context, pool *bufferpool.Pool) error {
	handles := map[int]*bufferpool.Handle{}
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("bufpoolctl ready: pin|unpin|write|dirty|force|flush|stats|quit")
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return shutdown(pool)
		default:
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "pin":
			n, err := pageArg(fields)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			h, err := pool.Pin(n)
			if err != nil {
				replyErr("pin", err)
				continue
			}
			handles[n] = h
			fmt.Printf("pinned page %d\n", n)

		case "unpin":
			n, err := pageArg(fields)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if err := pool.Unpin(&bufferpool.Handle{PageNumber: n}); err != nil {
				replyErr("unpin", err)
				continue
			}
			delete(handles, n)
			fmt.Printf("unpinned page %d\n", n)

		case "write":
			if len(fields) < 3 {
				fmt.Println("usage: write <page> <text>")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			h, ok := handles[n]
			if !ok {
				fmt.Println("error: page not pinned")
				continue
			}
			text := strings.Join(fields[2:], " ")
			copy(h.Data, text)
			if err := pool.MarkDirty(h); err != nil {
				replyErr("write", err)
				continue
			}
			fmt.Printf("wrote %d bytes to page %d\n", len(text), n)

		case "dirty":
			n, err := pageArg(fields)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			h, ok := handles[n]
			if !ok {
				h = &bufferpool.Handle{PageNumber: n}
			}
			if err := pool.MarkDirty(h); err != nil {
				replyErr("dirty", err)
				continue
			}
			fmt.Printf("marked page %d dirty\n", n)

		case "force":
			n, err := pageArg(fields)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if err := pool.ForcePage(&bufferpool.Handle{PageNumber: n}); err != nil {
				replyErr("force", err)
				continue
			}
			fmt.Printf("forced page %d\n", n)

		case "flush":
			if err := pool.ForceFlushPool(); err != nil {
				replyErr("flush", err)
				continue
			}
			fmt.Println("flushed")

		case "stats":
			printStats(pool)

		case "quit", "exit":
			return shutdown(pool)

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
	return shutdown(pool)
}

// replyErr logs a pool-returned error at Error level, per the ambient
// logging contract, and echoes it to the operator on stdout.
func replyErr(cmd string, err error) {
	slog.Error("bufpoolctl: command failed", "cmd", cmd, "err", err)
	fmt.Println("error:", err)
}

func pageArg(fields []string) (int, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("usage: %s <page>", fields[0])
	}
	return strconv.Atoi(fields[1])
}

func printStats(pool *bufferpool.Pool) {
	for i, fr := range pool.Snapshot() {
		fmt.Printf("frame %d: page=%d dirty=%t pins=%d\n", i, fr.PageNumber, fr.Dirty, fr.PinCount)
	}
	fmt.Printf("read_io=%d write_io=%d\n", pool.NumReadIO(), pool.NumWriteIO())
}

func shutdown(pool *bufferpool.Pool) error {
	if err := pool.Shutdown(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
