package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/playmatch/api/pkg/auth"
	"github.com/playmatch/api/pkg/config"
	"github.com/playmatch/api/pkg/logging"
	"github.com/playmatch/api/pkg/validation"

	"github.com/playmatch/api/repos/expo"
	"github.com/playmatch/api/repos/maps"
	"github.com/playmatch/api/repos/photos"
	"github.com/playmatch/api/repos/resend"
	"github.com/playmatch/api/repos/store"
	fsstore "github.com/playmatch/api/repos/store/firestore"
	"github.com/playmatch/api/repos/store/memory"

	"github.com/playmatch/api/services/account"
	"github.com/playmatch/api/services/chat"
	"github.com/playmatch/api/services/connections"
	"github.com/playmatch/api/services/courts"
	"github.com/playmatch/api/services/discovery"
	"github.com/playmatch/api/services/groups"
	"github.com/playmatch/api/services/notifications"
	"github.com/playmatch/api/services/playrequests"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the optional YAML config file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	gin.SetMode(cfg.Server.Mode)

	var clientOptions []option.ClientOption
	if cfg.Firebase.CredentialsJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(cfg.Firebase.CredentialsJSON)))
	}

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.Firebase.ProjectID,
		StorageBucket: cfg.Firebase.StorageBucket,
	}, clientOptions...)
	if err != nil {
		log.Fatalf("error initializing app: %v", err)
	}
	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to create Auth client: %v", err)
	}

	var st store.Store
	switch cfg.Store.Driver {
	case config.StoreMemory:
		log.Warn("using the in-memory store, data is lost on restart")
		st = memory.New()
	default:
		firestoreClient, err := firestore.NewClient(ctx, cfg.Firebase.ProjectID, clientOptions...)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()
		st = fsstore.New(firestoreClient)
	}

	uploader := newUploader(ctx, firebaseApp, cfg.Firebase.StorageBucket)
	mailer := resend.NewService(cfg.Mail.ResendKey, cfg.Mail.From, cfg.Mail.AppURL)
	if !mailer.Configured() {
		log.Warn("RESEND_KEY is not set, notification e-mails are disabled")
	}
	placesClient := maps.NewService(cfg.Maps.BaseURL, cfg.Maps.APIKey)
	if !placesClient.Configured() {
		log.Warn("GOOGLE_MAPS_API_KEY is not set, court search is disabled")
	}

	dispatcher := notifications.NewDispatcher(st, mailer, expo.NewService())
	accountService := account.NewService(st, authClient, uploader)
	playRequestService := playrequests.NewService(st, dispatcher)
	groupService := groups.NewService(st, dispatcher, uploader)
	chatService := chat.NewService(st)
	discoveryService := discovery.NewService(st, playRequestService, cfg.Discovery.PageSize)
	connectionService := connections.NewService(st)
	notificationService := notifications.NewService(st)
	courtService := courts.NewService(placesClient, courts.Options{
		SearchRadius: cfg.Maps.SearchRadius,
		DailyLimit:   cfg.Maps.DailyLimit,
		CacheTTL:     cfg.Maps.CacheTTL,
	})

	if err := validation.RegisterWithGin(); err != nil {
		log.Fatalf("Failed to register validation rules: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestLogger())
	if len(cfg.Server.CORSHosts) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.Server.CORSHosts
		corsConfig.AllowCredentials = true
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
		router.Use(cors.New(corsConfig))
	}

	authenticated := auth.AuthMiddleware(authClient)
	onboarded := auth.RequireOnboarding(accountService)

	publicRouter := router.Group("/auth/v1")

	accountRouter := router.Group("/account/v1")
	accountRouter.Use(authenticated)

	requestsRouter := router.Group("/requests/v1")
	requestsRouter.Use(authenticated, onboarded)

	groupsRouter := router.Group("/groups/v1")
	groupsRouter.Use(authenticated, onboarded)

	discoveryRouter := router.Group("/discovery/v1")
	discoveryRouter.Use(authenticated, onboarded)

	connectionsRouter := router.Group("/connections/v1")
	connectionsRouter.Use(authenticated, onboarded)

	notificationsRouter := router.Group("/notifications/v1")
	notificationsRouter.Use(authenticated, onboarded)

	courtsRouter := router.Group("/courts/v1")
	courtsRouter.Use(authenticated, onboarded)

	account.NewHTTPHandler(account.HTTPOptions{
		Service:      accountService,
		PublicRouter: publicRouter,
		Router:       accountRouter,
	})

	playrequests.NewHTTPHandler(playrequests.HTTPOptions{
		Service: playRequestService,
		Router:  requestsRouter,
	})

	groups.NewHTTPHandler(groups.HTTPOptions{
		Service: groupService,
		Router:  groupsRouter,
	})

	chat.NewHTTPHandler(chat.HTTPOptions{
		Service:     chatService,
		Router:      groupsRouter,
		CheckOrigin: originChecker(cfg.Server.CORSHosts),
	})

	discovery.NewHTTPHandler(discovery.HTTPOptions{
		Service: discoveryService,
		Router:  discoveryRouter,
	})

	connections.NewHTTPHandler(connections.HTTPOptions{
		Service: connectionService,
		Router:  connectionsRouter,
	})

	notifications.NewHTTPHandler(notifications.HTTPOptions{
		Service: notificationService,
		Router:  notificationsRouter,
	})

	courts.NewHTTPHandler(courts.HTTPOptions{
		Service: courtService,
		Router:  courtsRouter,
	})

	log.WithFields(log.Fields{"port": cfg.Server.Port, "store": cfg.Store.Driver}).Info("starting server")
	log.Fatal(router.Run(":" + cfg.Server.Port))
}

// newUploader opens the storage bucket. Without a bucket, uploads fail with
// an unavailable error and everything else keeps working.
func newUploader(ctx context.Context, app *firebase.App, bucketName string) photos.Uploader {
	if bucketName == "" {
		log.Warn("FIREBASE_STORAGE_BUCKET is not set, photo uploads are disabled")
		return photos.Unavailable{}
	}
	storageClient, err := app.Storage(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to create Storage client, photo uploads are disabled")
		return photos.Unavailable{}
	}
	bucket, err := storageClient.Bucket(bucketName)
	if err != nil {
		log.WithError(err).Error("Failed to open storage bucket, photo uploads are disabled")
		return photos.Unavailable{}
	}
	return photos.NewService(bucket, bucketName)
}

// originChecker accepts websocket origins that CORS would accept. With no
// CORS hosts configured every origin is allowed.
func originChecker(hosts []string) func(r *http.Request) bool {
	if len(hosts) == 0 {
		return nil
	}
	allowed := map[string]bool{}
	for _, h := range hosts {
		allowed[h] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin] || allowed["*"]
	}
}
