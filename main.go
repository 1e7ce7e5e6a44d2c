package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"simpleTwitter/auth"
	"simpleTwitter/crud"
	"simpleTwitter/http"
	"simpleTwitter/storage"
	"simpleTwitter/timefmt"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	resetBool := flag.Bool("reset", false, "Drop and recreate all tables before the application starts.")
	flag.Parse()

	// Load configuration from a .config.json file if present, otherwise use the default dev setup.
	// In production the .config.json file is required.
	config, err := LoadConfig(*productionBool)
	must(err)
	setupLogging(config)

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	must(Open(db, config.IsProd()))
	defer Close(db)
	if *resetBool {
		logrus.Warn("dropping all tables")
		must(DestructiveReset(db))
	} else {
		must(AutoMigrate(db))
	}

	// Start the crud services.
	images := storage.NewImageService(config.Images.Dir, config.Images.PublicURL)
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper, config.Auth.BcryptCost, images),
		crud.WithTweet(),
		crud.WithReply(),
		crud.WithLike(),
		crud.WithFollow(),
	)
	must(err)

	// Make sure the administrator can sign in.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	must(services.User.EnsureRoot(ctx, config.Auth.RootPassword))

	// Set up a webserver.
	location, err := time.LoadLocation(config.Time.TimeZone)
	must(err)
	server := http.NewServer(
		services.User,
		services.Tweet,
		services.Reply,
		services.Like,
		services.Follow,
		auth.NewIssuer(config.Auth.JWTSecret, time.Duration(config.Auth.TokenTTLDays)*24*time.Hour),
		timefmt.New(config.Time.Locale, location),
		config.Images.Dir,
	)

	// Serve the app until interrupted.
	if err := server.Run(ctx, config.Port); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
	logrus.Info("server stopped")
}

// setupLogging configures the standard logrus logger. Production logs are json.
func setupLogging(config Config) {
	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if config.IsProd() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
