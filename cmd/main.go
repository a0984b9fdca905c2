package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/example/mediachat/internal/delivery"
	ws "github.com/example/mediachat/internal/delivery/ws"
	"github.com/example/mediachat/internal/domain"
	"github.com/example/mediachat/internal/infra"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {

	// LOGGER
	zcore, _ := zap.NewProduction()
	zl := logger.NewZapLogger(zcore.Sugar())

	// ENV
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8001"
	}

	storageRoot := os.Getenv("STORAGE_ROOT")
	if storageRoot == "" {
		storageRoot = "./storage"
	}

	plannerCmd := os.Getenv("PLANNER_CMD")
	if plannerCmd == "" {
		log.Println("WARN: PLANNER_CMD is not set; chat editing commands will not work")
	}
	var plannerArgs []string
	if raw := os.Getenv("PLANNER_ARGS"); raw != "" {
		plannerArgs = strings.Fields(raw)
	}

	ffmpegBin := os.Getenv("FFMPEG_BIN")

	// MEDIA STORE
	thumbnailer := infra.NewFFmpegThumbnailer(ffmpegBin, storageRoot+"/thumbnails")

	store, err := infra.NewFSMediaStore(storageRoot, thumbnailer)
	if err != nil {
		panic("cannot init media store: " + err.Error())
	}

	// orphaned uploads from a prior run
	cleaned := store.CleanTemp()
	log.Printf("cleaned %d temporary files on startup", cleaned)

	// SERVICES
	resolver := infra.NewFSResolver(store)
	planner := infra.NewPlannerProcess(plannerCmd, plannerArgs)
	chatLog := infra.NewMemoryChatLog()

	chatService := domain.NewChatService(chatLog, resolver, planner, store.Dir(infra.BucketVideos))

	// WS HUB
	hub := ws.NewHub()

	// BROADCAST LISTENER
	go func() {
		for msg := range chatService.Events() {

			payload, err := json.Marshal(msg)
			if err != nil {
				log.Printf("[SEND][ERR] json marshal failed: %v", err)
				continue
			}

			log.Printf("[SEND] req=%s text=%.30s", msg.RequestID, msg.Content)
			hub.Broadcast(payload)
		}
	}()

	// HANDLERS
	hMedia := delivery.NewMediaHandler(store, zl)
	hChat := delivery.NewChatHandler(chatService, chatLog, zl)

	// ROUTER
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))

	delivery.RegisterRoutes(r, hMedia, hChat)

	r.Get("/ws", ws.WSHandler(hub))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "server started",
		Fields:  map[string]any{"port": port, "storage": storageRoot},
	})

	if err := http.ListenAndServe(":"+port, r); err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "server crashed",
			Error:   err,
		})
	}
}
