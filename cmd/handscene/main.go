package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"gocv.io/x/gocv"

	"github.com/ayusman/handscene/internal/app"
	"github.com/ayusman/handscene/internal/capture"
	"github.com/ayusman/handscene/internal/config"
	"github.com/ayusman/handscene/internal/detector"
	"github.com/ayusman/handscene/internal/scene"
	"github.com/ayusman/handscene/internal/server"
	"github.com/ayusman/handscene/internal/store"
	"github.com/ayusman/handscene/internal/tray"
	"github.com/ayusman/handscene/internal/viewer"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	cameraID := flag.Int("camera", -1, "camera device ID (overrides config)")
	window := flag.Bool("window", false, "open the preview window")
	useTray := flag.Bool("tray", false, "run from the system tray")
	replayPath := flag.String("replay", "", "replay a landmark recording instead of the camera")
	flag.Parse()

	fmt.Println("Handscene - Hand Landmark Scene Sync")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *cameraID >= 0 {
		cfg.Camera.DeviceID = *cameraID
	}
	if *window {
		cfg.UI.Window = true
	}
	if *useTray {
		cfg.UI.Tray = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	sc, err := scene.New(cfg.SceneConfig())
	if err != nil {
		log.Fatalf("Failed to create scene: %v", err)
	}
	restoreViewport(st, sc)

	a, err := app.New(app.Config{
		Store:     st,
		Scene:     sc,
		Camera:    cfg.Camera,
		Detector:  cfg.Detector,
		RenderFPS: cfg.Render.FPS,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	if *replayPath != "" {
		blank, err := useReplay(a, *replayPath, cfg.Camera.Width, cfg.Camera.Height)
		if err != nil {
			log.Fatalf("Failed to load replay: %v", err)
		}
		defer blank.Close()
	}

	webDir := cfg.Server.StaticDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Scene:     sc,
		Camera:    a.Camera(),
		Tracker:   a,
	})
	a.OnRender(srv.Publish)

	if err := a.Start(); err != nil {
		log.Printf("Tracking unavailable: %v", err)
	}
	defer a.Stop()

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	switch {
	case cfg.UI.Window:
		err := viewer.Run(sc, viewer.Config{
			Title:  "Handscene",
			Width:  cfg.UI.WindowWidth,
			Height: cfg.UI.WindowHeight,
			TPS:    cfg.Render.FPS,
		}, func(w, h int) {
			if err := st.Settings().SaveViewport(store.Viewport{Width: w, Height: h}); err != nil {
				log.Printf("Failed to save viewport: %v", err)
			}
		})
		if err != nil {
			log.Printf("Viewer exited: %v", err)
		}

	case cfg.UI.Tray:
		t := tray.New(a.IsEnabled())
		t.OnToggle(a.SetEnabled)
		t.OnOpen(func() { openBrowser(browserURL(cfg.Server.Addr)) })
		a.OnRender(t.Update)
		t.Run()

	default:
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
	}

	fmt.Println("Shutting down")
}

// restoreViewport applies the render surface size saved by a previous run.
func restoreViewport(st *store.Store, sc *scene.Scene) {
	vp, err := st.Settings().LoadViewport()
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Failed to load viewport: %v", err)
		}
		return
	}
	if err := sc.Resize(vp.Width, vp.Height); err != nil {
		log.Printf("Ignoring saved viewport %dx%d: %v", vp.Width, vp.Height, err)
	}
}

// useReplay swaps the live camera and detector for a looping recording. The
// returned blank frame backs the mock camera and must be closed by the caller.
func useReplay(a *app.App, path string, width, height int) (*gocv.Mat, error) {
	frames, err := detector.LoadRecordingFile(path)
	if err != nil {
		return nil, err
	}

	rd := detector.NewReplayDetector(frames, true)
	if w, h := rd.FrameSize(); w > 0 && h > 0 {
		width, height = w, h
	}

	if old := a.Detector(); old != nil {
		old.Close()
	}
	a.SetDetector(rd)

	blank := capture.NewBlankFrame(width, height)
	a.SetCamera(capture.NewMockCamera([]*gocv.Mat{blank}, true))

	log.Printf("Replaying %d frames from %s", len(frames), path)
	return blank, nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}

func browserURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
