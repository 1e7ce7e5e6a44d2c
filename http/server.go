package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"simpleTwitter/auth"
	"simpleTwitter/domain"
	"simpleTwitter/errs"
	"simpleTwitter/timefmt"
)

// Server provides the http functionality of this app, namely routing, request
// handling, and middleware. It authenticates and authorizes every request
// before handing things over to one of the crud services.
type Server struct {
	router  *mux.Router
	handler http.Handler
	us     domain.UserService
	ts     domain.TweetService
	rs     domain.ReplyService
	ls     domain.LikeService
	fs     domain.FollowService
	issuer *auth.Issuer
	times  *timefmt.Formatter

	registry       *prometheus.Registry
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
// Uploaded images are served from the images directory below imagesDir.
func NewServer(
	us domain.UserService,
	ts domain.TweetService,
	rs domain.ReplyService,
	ls domain.LikeService,
	fs domain.FollowService,
	issuer *auth.Issuer,
	times *timefmt.Formatter,
	imagesDir string,
) *Server {

	// Construct a new Server with a gorilla router and the services passed in.
	s := &Server{
		router: mux.NewRouter(),
		us:     us,
		ts:     ts,
		rs:     rs,
		ls:     ls,
		fs:     fs,
		issuer: issuer,
		times:  times,
	}
	s.initMetrics()

	// Every json endpoint lives below /api.
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(setContentTypeJSON)

	// Register routes of the auth system.
	s.registerAuthRoutes(api)
	s.registerAdminRoutes(api)

	// Register routes of the crud system.
	s.registerTweetRoutes(api)
	s.registerLikeRoutes(api)
	s.registerFollowRoutes(api)
	s.registerUserRoutes(api)

	// Unknown api routes answer with the usual error body.
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "The requested resource does not exist."))
	})

	// Serve uploaded avatars and covers, and the prometheus metrics.
	images := filesOnly{http.Dir(filepath.Join(imagesDir, domain.ImagesBaseDir))}
	s.router.PathPrefix("/" + domain.ImagesBaseDir + "/").
		Handler(http.StripPrefix("/"+domain.ImagesBaseDir+"/", http.FileServer(images))).
		Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")

	// Observe every request, including the ones no route matches.
	s.handler = s.observe(s.router)
	return s
}

// ServeHTTP lets the Server act as the handler of an http.Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run listens and serves on the specified port until ctx is cancelled, then
// shuts the server down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// filesOnly is a http.FileSystem that refuses to open directories, so the
// file server never lists a user's uploads.
type filesOnly struct {
	fs http.FileSystem
}

func (fo filesOnly) Open(name string) (http.File, error) {
	f, err := fo.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// writeJSON writes v as the json body of a successful response.
func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs.LogError(r, err)
	}
}

// parseID parses a positive integer route parameter.
func parseID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, errs.IdInvalid
	}
	return id, nil
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.Errorf(errs.EINVALID, "Invalid request body.")
	}
	return nil
}
