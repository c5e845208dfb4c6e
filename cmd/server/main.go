package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"backend-medcall/internal/app"
	"backend-medcall/internal/config"
	"backend-medcall/internal/http/handler"
	"backend-medcall/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	config.LoadEnv()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("[server] open session: %v", err)
	}
	defer sess.Close()

	hub := realtime.NewHub()
	hub.Attach(sess.Bus)
	go hub.Run(ctx)

	srv := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
	})

	srv.Use(recover.New())
	srv.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))

	handler.New(sess, hub, cfg.JWTSecret, cfg.TokenTTL).Routes(srv)

	go func() {
		<-ctx.Done()
		log.Println("[server] shutting down")
		if err := srv.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Printf("[server] shutdown: %v", err)
		}
	}()

	addr := cfg.Addr()
	log.Println("[server] jalan di", addr)
	if err := srv.Listen(addr); err != nil {
		log.Printf("[server] listen: %v", err)
	}
}
