// Command callsim drives a live voice session from the terminal. It exists so
// the call flow can be exercised against the real vendor without the portal
// front-end: start a call, fire quick actions, watch the transcript.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gavalink/internal/callsession"
	"gavalink/internal/callstate"
	"gavalink/internal/config"
	"gavalink/internal/voicevendor"
	"gavalink/pkg/logger"

	"github.com/joho/godotenv"
)

// grantedMic stands in for the browser permission prompt; the terminal user
// already consented by running the simulator.
type grantedMic struct{}

func (grantedMic) Request(ctx context.Context) error { return ctx.Err() }

// printSink renders session events as terminal lines.
type printSink struct{}

func (printSink) PhaseChanged(p callsession.Phase) {
	fmt.Printf("-- phase: %s\n", p)
}

func (printSink) MessageAppended(m callsession.Message) {
	fmt.Printf("[%s] %s\n", m.Sender, m.Text)
}

func (printSink) SpeakingChanged(speaking bool) {
	if speaking {
		fmt.Println("-- agent speaking...")
	}
}

func (printSink) DurationTick(seconds int) {
	if seconds%15 == 0 {
		fmt.Printf("-- %02d:%02d\n", seconds/60, seconds%60)
	}
}

func (printSink) Notice(text string) {
	fmt.Printf("-- %s\n", text)
}

func (printSink) SessionFailed(e *callsession.CallError) {
	fmt.Printf("-- call failed (%s): %s\n", e.Kind, e.Message)
}

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	dialer := voicevendor.NewRealtime(voicevendor.Config{
		APIKey:  cfg.Voice.APIKey,
		BaseURL: cfg.Voice.BaseURL,
	})
	state := callstate.NewStore()
	ctrl := callsession.NewController(dialer, grantedMic{}, state, printSink{}, callsession.Config{
		AgentID:   cfg.Voice.AgentID,
		Transport: voicevendor.TransportMode(cfg.Voice.TransportMode),
		Logger:    log,
	})
	defer ctrl.End(context.Background())

	fmt.Println("commands: start, end, retry, mute, qa <nil_return|check_balance|upload_document|general_help>, status, route <path>, quit")

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-rootCtx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := dispatch(rootCtx, ctrl, state, cfg, line); quit {
				return
			}
		}
	}
}

func dispatch(ctx context.Context, ctrl *callsession.Controller, state *callstate.Store, cfg config.Config, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "start":
		err = ctrl.Start(ctx)
	case "end":
		ctrl.End(ctx)
	case "retry":
		err = ctrl.Retry(ctx)
	case "mute":
		err = ctrl.ToggleMute()
	case "qa":
		if len(args) != 1 {
			fmt.Println("usage: qa <nil_return|check_balance|upload_document|general_help>")
			return false
		}
		err = ctrl.QuickAction(callsession.QuickAction(args[0]))
	case "status":
		snap := ctrl.Snapshot()
		fmt.Printf("phase=%s duration=%ds messages=%d muted=%v\n",
			snap.Phase, snap.DurationSeconds, len(snap.Transcript), snap.MuteIndicator)
	case "route":
		if len(args) != 1 {
			fmt.Println("usage: route <path>")
			return false
		}
		snap := state.Snapshot()
		fmt.Printf("indicator=%v widget=%v\n",
			callstate.IndicatorVisible(args[0], snap),
			callstate.WidgetVisible(args[0], cfg.Voice.WidgetRoutes))
	case "quit", "exit":
		return true
	default:
		fmt.Printf("unknown command %q\n", cmd)
	}
	if err != nil {
		fmt.Printf("-- %v\n", err)
	}
	return false
}
