package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DanielBremont/pachi/config"
	"github.com/DanielBremont/pachi/coordinator"
	"github.com/DanielBremont/pachi/game"
	"github.com/DanielBremont/pachi/tree"
)

func main() {
	cfgPath := flag.String("config", "coordinator.yaml", "Coordinator configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}
	setupLogging(cfg.LogLevel)

	pos := &lenientBoard{size: cfg.BoardSize, komi: cfg.Komi, handicap: cfg.Handicap}
	book := tree.New(cfg.BoardSize, game.Black, game.FullSymmetry(cfg.BoardSize))

	options := []coordinator.Option{
		coordinator.WithBook(book, pos, nil, cfg.BookThreshold),
	}
	if cfg.MaxWorkers > 0 {
		options = append(options, coordinator.WithMaxWorkers(cfg.MaxWorkers))
	}
	if cfg.WorkersQuit {
		options = append(options, coordinator.WithWorkersQuit())
	}
	c := coordinator.New(cfg.BoardSize, options...)
	defer c.Close()

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		log.Fatal().Err(err).Str("listen", cfg.Listen).Msg("listen")
	}
	defer ln.Close()
	log.Info().Str("listen", cfg.Listen).Int("size", cfg.BoardSize).Msg("accepting workers")
	go acceptWorkers(ln, c)

	runControl(os.Stdin, os.Stdout, c, cfg.BoardSize)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

func acceptWorkers(ln net.Listener, c *coordinator.Coordinator) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Warn().Err(err).Msg("accept")
			return
		}
		if err := c.AddWorker(conn); err != nil {
			log.Warn().Err(err).Msg("rejecting worker")
			conn.Close()
		}
	}
}

// runControl drives the coordinator from a line-based control stream:
// one command per line, answers prefixed with "=" and terminated by a
// blank line. Commands it does not service itself are forwarded to the
// workers verbatim.
func runControl(in io.Reader, out io.Writer, c *coordinator.Coordinator, size int) {
	var ti game.TimeInfo
	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		verb, args := fields[0], fields[1:]

		switch verb {
		case "quit":
			c.Notify(verb, "")
			answer(w, "")
			return
		case "time_left":
			ti = parseTimeLeft(args, ti)
			answer(w, "")
		case "genmove", "genmove_cleanup":
			color, ok := parseColorArg(args)
			if !ok {
				fail(w, "syntax error")
				continue
			}
			move := c.Genmove(color, ti)
			ti = game.TimeInfo{}
			answer(w, move.Text(size))
		case "final_status_list":
			if len(args) > 0 && args[0] == "dead" {
				answer(w, deadList(c.DeadGroups(), size))
			} else {
				answer(w, "")
			}
		case "chat":
			answer(w, c.Chat(strings.Join(args, " ")))
		default:
			c.Notify(verb, joinArgs(args))
			answer(w, "")
		}
	}
}

// lenientBoard is a stand-in board oracle for a coordinator that keeps
// no position of its own: every point is playable. Move legality is the
// workers' problem; the book only needs the game header.
type lenientBoard struct {
	size     int
	komi     float64
	handicap int
}

func (b *lenientBoard) Size() int                         { return b.size }
func (b *lenientBoard) Komi() float64                     { return b.komi }
func (b *lenientBoard) Handicap() int                     { return b.handicap }
func (b *lenientBoard) Empty(game.Coord) bool             { return true }
func (b *lenientBoard) Legal(game.Color, game.Coord) bool { return true }
func (b *lenientBoard) NearStones(game.Coord, int) bool   { return true }
func (b *lenientBoard) Occupied() bool                    { return false }

func parseColorArg(args []string) (game.Color, bool) {
	if len(args) == 0 {
		return game.None, false
	}
	return game.ParseColor(args[0])
}

// parseTimeLeft folds a "time_left <color> <seconds> <stones>" update
// into the clock state for the next decision. A zero stone count means
// absolute main time; otherwise the seconds are a Canadian period.
func parseTimeLeft(args []string, ti game.TimeInfo) game.TimeInfo {
	if len(args) < 3 {
		return ti
	}
	secs, err1 := strconv.Atoi(args[1])
	stones, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil {
		return ti
	}
	if stones == 0 {
		ti.Main = time.Duration(secs) * time.Second
	} else {
		ti.Main = 0
		ti.Byoyomi = time.Duration(secs) * time.Second
		ti.Stones = stones
	}
	return ti
}

func deadList(dead []game.Coord, size int) string {
	texts := make([]string, len(dead))
	for i, c := range dead {
		texts[i] = c.Text(size)
	}
	return strings.Join(texts, " ")
}

func joinArgs(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.Join(args, " ") + "\n"
}

func answer(w *bufio.Writer, body string) {
	if body == "" {
		fmt.Fprint(w, "=\n\n")
	} else {
		fmt.Fprintf(w, "= %s\n\n", body)
	}
	w.Flush()
}

func fail(w *bufio.Writer, msg string) {
	fmt.Fprintf(w, "? %s\n\n", msg)
	w.Flush()
}
