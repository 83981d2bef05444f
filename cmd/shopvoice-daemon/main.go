package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"shopvoice/internal/capture"
	"shopvoice/internal/catalog"
	"shopvoice/internal/config"
	"shopvoice/internal/connectivity"
	"shopvoice/internal/consent"
	"shopvoice/internal/emotion"
	"shopvoice/internal/ipc"
	"shopvoice/internal/payment"
	"shopvoice/internal/proxy"
	"shopvoice/internal/session"
	"shopvoice/internal/speech"
	"shopvoice/pkg/audioenc"
	"shopvoice/pkg/hostbus"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// publisher is the outbound side of the host bus; nil when headless.
type publisher interface {
	Publish(hostbus.Message)
}

func publish(pub publisher, m hostbus.Message) {
	if pub != nil {
		pub.Publish(m)
	}
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	busURL := cli.StringP("bus", "b", "", "Host UI websocket url (overrides env)")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address (overrides env)")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)
	cfg := config.Load()
	if *busURL != "" {
		cfg.BusURL = *busURL
	}
	if *proxyAddr != "" {
		cfg.ProxyAddr = *proxyAddr
	}

	gate := consent.NewGate(consent.NewFileStore(cfg.ConsentPath))
	log.Debug("Loaded consent", "granted", gate.Get().Granted)

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			log.Error("Failed to load catalog", "path", cfg.CatalogPath, "err", err)
			os.Exit(1)
		}
		cat = loaded
	}
	log.Debug("Loaded catalog", "products", len(cat.Products()))

	httpClient, err := proxy.NewHTTPClient(cfg.ProxyAddr, 120*time.Second)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", cfg.ProxyAddr, "err", err)
		os.Exit(1)
	}

	// Tone analysis is optional: without an API key the heuristic
	// carries classification on its own.
	var remote emotion.Inferencer
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		client := openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(httpClient),
		)
		remote = emotion.NewProsodyClient(client, cfg.ProsodyModel)
		log.Debug("Loaded prosody client", "model", cfg.ProsodyModel)
	}
	classifier := emotion.NewClassifier(remote, 0)

	var voice speech.Synthesizer
	if v, err := speech.NewVoice(); err == nil {
		voice = v
	} else {
		log.Warn("No speech output, running text-only", "err", err)
		voice = speech.Noop{}
	}
	defer voice.Close()

	cues := speech.NewCuePlayer(cfg.ChimePath)
	net := connectivity.NewMonitor()

	payHTTP, err := proxy.NewHTTPClient(cfg.ProxyAddr, 30*time.Second)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", cfg.ProxyAddr, "err", err)
		os.Exit(1)
	}
	pay := payment.NewClient(cfg.PaymentURL, payHTTP)

	var bus *hostbus.Client
	if cfg.BusURL != "" {
		bus, err = hostbus.Dial(cfg.BusURL, 3*time.Second)
		if err != nil {
			log.Error("Failed to connect host bus", "url", cfg.BusURL, "err", err)
			os.Exit(1)
		}
		defer bus.Close()
	}
	var pub publisher
	if bus != nil {
		pub = bus
	}

	orch := session.New(session.Config{
		Classifier: classifier,
		Catalog:    cat,
		Payment:    pay,
		Voice:      voice,
		Haptics:    cues,
		Net:        net,
		Mirror: func(r session.Reply) {
			publish(pub, hostbus.Message{
				Kind:    hostbus.KindResponse,
				Text:    r.Text,
				Emotion: string(r.Emotion),
				Seq:     r.Seq,
			})
		},
	})
	defer orch.Stop()

	var mic capture.Mic
	if m, err := capture.NewPortAudioMic(); err == nil {
		mic = m
		defer m.Close()
	} else {
		log.Warn("No microphone, voice input disabled", "err", err)
	}

	var rec capture.Recognizer
	if w, err := capture.NewWhisperRecognizer(cfg.WhisperModel); err == nil {
		rec = w
		defer w.Close()
	} else {
		log.Warn("No recognizer, voice input disabled", "err", err)
	}

	sess := capture.NewSession(mic, rec,
		func() bool { return gate.Get().Granted },
		func(ev capture.Event) {
			publish(pub, hostbus.Message{
				Kind:  hostbus.KindTranscript,
				Text:  ev.Text,
				Seq:   ev.Seq,
				Final: ev.Final,
			})
			orch.Enqueue(ev)
		},
		captureError(orch, pub),
	)

	if bus != nil {
		go bus.Run(func(m hostbus.Message) {
			handleControl(m.Kind, m.Text, sess, gate, net, cues, orch, pub)
		})
	}

	if err := ipc.StartServer(cfg.SocketPath, func(msg ipc.ControlMessage) ipc.Reply {
		return handleIPC(msg, sess, gate, net, cues, orch, pub)
	}); err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}

	log.Info("Boot up - successful", "socket", cfg.SocketPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("Shutting down")
	sess.Stop()
}

func handleControl(kind, text string, sess *capture.Session, gate *consent.Gate,
	net *connectivity.Monitor, cues *speech.CuePlayer, orch *session.Orchestrator, pub publisher) {
	switch kind {
	case hostbus.KindTrigger:
		startListening(sess, cues, orch, pub)
	case hostbus.KindStop:
		sess.Stop()
		publish(pub, hostbus.Message{Kind: hostbus.KindListening, Text: "off"})
	case hostbus.KindConsent:
		gate.Set(text == "granted")
	case hostbus.KindConnectivity:
		if text == "offline" {
			net.Set(connectivity.Offline)
		} else {
			net.Set(connectivity.Online)
		}
	default:
		log.Warn("Unknown bus frame", "kind", kind)
	}
}

func handleIPC(msg ipc.ControlMessage, sess *capture.Session, gate *consent.Gate,
	net *connectivity.Monitor, cues *speech.CuePlayer, orch *session.Orchestrator, pub publisher) ipc.Reply {
	switch msg.Cmd {
	case "trigger":
		if err := startListening(sess, cues, orch, pub); err != nil {
			return ipc.Reply{Text: err.Error()}
		}
		return ipc.Reply{OK: true, Text: "listening"}

	case "stop":
		sess.Stop()
		publish(pub, hostbus.Message{Kind: hostbus.KindListening, Text: "off"})
		return ipc.Reply{OK: true, Text: "stopped"}

	case "consent":
		state := gate.Set(msg.Arg == "on")
		return ipc.Reply{OK: true, Text: fmt.Sprintf("consent granted=%v", state.Granted)}

	case "connectivity":
		if msg.Arg == "offline" {
			net.Set(connectivity.Offline)
		} else {
			net.Set(connectivity.Online)
		}
		return ipc.Reply{OK: true, Text: msg.Arg}

	case "inject":
		pcm, err := audioenc.DecodeFile(msg.Arg)
		if err != nil {
			return ipc.Reply{Text: err.Error()}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if err := sess.Inject(ctx, pcm); err != nil {
			return ipc.Reply{Text: err.Error()}
		}
		return ipc.Reply{OK: true, Text: "injected"}

	case "status":
		c := orch.Cart()
		parts := []string{
			fmt.Sprintf("listening=%v", sess.Listening()),
			fmt.Sprintf("consent=%v", gate.Get().Granted),
			fmt.Sprintf("connectivity=%s", net.State()),
			fmt.Sprintf("cart_items=%d", c.Items()),
			fmt.Sprintf("cart_total=%.2f", c.Total()),
		}
		return ipc.Reply{OK: true, Text: strings.Join(parts, " ")}

	default:
		log.Warn("Unknown command", "cmd", msg.Cmd)
		return ipc.Reply{Text: "unknown command"}
	}
}

func startListening(sess *capture.Session, cues *speech.CuePlayer, orch *session.Orchestrator, pub publisher) error {
	if err := sess.Start(); err != nil {
		publish(pub, hostbus.Message{Kind: hostbus.KindError, Text: err.Error()})
		orch.HandleCaptureError(err)
		return err
	}
	publish(pub, hostbus.Message{Kind: hostbus.KindListening, Text: "on"})
	cues.Chime()
	log.Info("Listening")
	return nil
}

// captureError mirrors mid-stream capture failures to the host UI before
// the orchestrator speaks them. The session is idle after any error, so
// a listening-off frame rides along.
func captureError(orch *session.Orchestrator, pub publisher) func(error) {
	return func(err error) {
		publish(pub, hostbus.Message{Kind: hostbus.KindError, Text: err.Error()})
		publish(pub, hostbus.Message{Kind: hostbus.KindListening, Text: "off"})
		orch.HandleCaptureError(err)
	}
}
