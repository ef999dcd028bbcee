package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/leslie-fei/bytealloc"
)

func main() {
	var slotSize, chunkPower int
	var memType, lockType string
	var verbose bool

	flag.IntVar(&slotSize, "s", 16, "slot size in bytes")
	flag.IntVar(&chunkPower, "p", 4, "slots per chunk as a power of two")
	flag.StringVar(&memType, "m", "go", "chunk memory: go, mmap or shm")
	flag.StringVar(&lockType, "l", "mutex", "lock type: none, mutex or spin")
	flag.BoolVar(&verbose, "v", false, "log structural events")
	flag.Parse()

	config := &bytealloc.Config{SlotSize: slotSize, ChunkPower: chunkPower}
	switch memType {
	case "go":
		config.MemoryType = bytealloc.GO
	case "mmap":
		config.MemoryType = bytealloc.MMAP
	case "shm":
		config.MemoryType = bytealloc.SHM
	default:
		fmt.Println("unknown memory type:", memType)
		os.Exit(2)
	}
	switch lockType {
	case "none":
		config.LockType = bytealloc.LockNone
	case "mutex":
		config.LockType = bytealloc.LockMutex
	case "spin":
		config.LockType = bytealloc.LockSpin
	default:
		fmt.Println("unknown lock type:", lockType)
		os.Exit(2)
	}
	if verbose {
		config.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	a, err := bytealloc.NewWithConfig(config)
	if err != nil {
		panic(err)
	}
	defer a.Close()

	runConsole(a)
}

func runConsole(a *bytealloc.Allocator) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Available commands: alloc, free <id>, set <id> <offset> <long>, get <id> <offset>, trim, resize <size>, stats, exit")

	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		args, err := atoiAll(parts[1:])
		if err != nil {
			fmt.Println(err)
			continue
		}

		switch {
		case parts[0] == "exit":
			return
		case parts[0] == "alloc":
			id, err := a.Alloc()
			report(id, err)
		case parts[0] == "free" && len(args) == 1:
			report("freed", a.Free(args[0]))
		case parts[0] == "set" && len(args) == 3:
			report("ok", a.SetLong(args[0], args[1], int64(args[2])))
		case parts[0] == "get" && len(args) == 2:
			v, err := a.GetLong(args[0], args[1])
			report(v, err)
		case parts[0] == "trim":
			fmt.Println("released:", a.Trim())
		case parts[0] == "resize" && len(args) == 1:
			report("ok", a.AdjustSlotSize(args[0]))
		case parts[0] == "stats":
			fmt.Printf("%+v\n", a.Stats())
		default:
			fmt.Println("Unknown command or wrong arguments.")
		}
	}
}

func atoiAll(parts []string) ([]int, error) {
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func report(v any, err error) {
	switch {
	case err == nil:
		fmt.Println(v)
	case errors.Is(err, bytealloc.ErrIDOutOfBounds), errors.Is(err, bytealloc.ErrOffsetOutOfBounds):
		fmt.Println("out of bounds:", err)
	default:
		fmt.Println("error:", err)
	}
}
