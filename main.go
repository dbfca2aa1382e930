package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"EduProject/global"
	"EduProject/logger"
	"EduProject/middleware"
	"EduProject/service/gateway"
	"EduProject/service/gateway/handler"
	"EduProject/service/push"
	"EduProject/service/storage"
	storeredis "EduProject/service/storage/redis"
	"EduProject/tools"
	"EduProject/tools/security"
)

func main() {
	global.ConfigIds()
	global.ConfigMiddleware()

	gwID := tools.GetEnv("GATEWAY_ID", "edu_gw-1")
	addr := tools.GetEnv("LISTEN_ADDR", ":8080")

	auth := &gateway.JWTAuthenticator{
		Opts: security.DefaultOptions(global.GetJwtSecret()),
	}
	srv := gateway.NewServer(gwID, auth)
	handler.RegisterAll(srv.Disp())
	srv.Start()

	// Redis presence mirror is optional; without REDIS_ADDR the in-memory
	// registry is the only presence view.
	var mirror *storage.PresenceMirror
	if rc := global.RedisConfigFromEnv(); rc.Addr != "" {
		if err := storeredis.InitRedis(rc); err != nil {
			logger.Errorf("[Main] redis init failed: %v", err)
			os.Exit(1)
		}
		mirror = storage.NewPresenceMirror(storeredis.GetRedis(), gwID, 90*time.Second)
		srv.SetPresenceListener(mirror)
		mirror.StartRefresh(srv.Registry().OnlineUsers)
		logger.Infof("[Main] presence mirror enabled addr=%s", rc.Addr)
	}

	pushSvc := push.NewService(srv)

	if nc := global.NatsConfigFromEnv(gwID); len(nc.Servers) > 0 {
		mgr, err := push.StartBridge(pushSvc, nc, "", 2*time.Minute)
		if err != nil {
			logger.Errorf("[Main] nats bridge failed: %v", err)
			os.Exit(1)
		}
		defer func() { _ = mgr.Close() }()
		logger.Infof("[Main] nats bridge enabled url=%s", nc.Servers[0])
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Manager().Use())

	r.GET("/ws", srv.HandleWS)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"gateway": gwID,
			"conns":   srv.Registry().ConnCount(),
			"rooms":   srv.Rooms().RoomCount(),
		})
	})

	middleware.POST(r, "/push/user", pushSvc.HandlePushUser, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/push/room", pushSvc.HandlePushRoom, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/online/:user", pushSvc.HandleOnline, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/online", pushSvc.HandleOnlineList, middleware.RouteOpt{IsAuth: true})

	httpSrv := &http.Server{Addr: addr, Handler: r}
	go func() {
		logger.Infof("[Main] gateway %s listening on %s", gwID, addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("[Main] listen failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("[Main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	srv.Shutdown()
	if mirror != nil {
		mirror.Stop()
		_ = storeredis.CloseRedis()
	}
}
