package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/umarshaikh/physiosync/internal/mocap"
	"github.com/umarshaikh/physiosync/internal/server"
	"github.com/umarshaikh/physiosync/internal/store"
	"github.com/umarshaikh/physiosync/internal/tray"
)

// trayRecordDuration is the capture length for tray-initiated sessions.
const trayRecordDuration = 15 * time.Second

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cameraID := flag.Int("camera", 0, "camera device ID")
	noTray := flag.Bool("no-tray", false, "run headless without the system tray")
	flag.Parse()

	fmt.Println("PhysioSync - Exercise Analysis")

	// Initialize the data directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".physiosync")
	recordingsDir := filepath.Join(dataDir, "recordings")
	templatesDir := filepath.Join(dataDir, "templates")
	for _, dir := range []string{dataDir, recordingsDir, templatesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	st, err := store.New(filepath.Join(dataDir, "physiosync.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Capture is optional: without the pose service the daemon still
	// analyzes existing recordings.
	camera := mocap.NewCamera(*cameraID)
	var recorder *mocap.Recorder
	tracker, err := mocap.NewMediaPipeTracker(mocap.DefaultTrackerConfig())
	if err != nil {
		log.Printf("Capture disabled: %v", err)
	} else {
		defer tracker.Close()
		recorder = mocap.NewRecorder(camera, tracker, recordingsDir)
	}

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	cfg := server.Config{
		StaticDir:     webDir,
		RecordingsDir: recordingsDir,
		TemplatesDir:  templatesDir,
		Store:         st,
		Recorder:      recorder,
		Camera:        camera,
	}

	srv := server.New(cfg)

	if *noTray {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	runTray(recorder, *addr)
}

// runTray wires the recorder into the tray menu and blocks until quit.
func runTray(recorder *mocap.Recorder, addr string) {
	t := tray.New()

	t.OnRecord(func() bool {
		if recorder == nil {
			return false
		}
		if err := recorder.Start(trayRecordDuration); err != nil {
			log.Printf("Failed to start recording: %v", err)
			return false
		}
		go watchRecording(t, recorder)
		return true
	})

	t.OnStop(func() {
		if recorder != nil {
			recorder.Stop()
		}
	})

	t.OnDashboard(func() {
		openBrowser("http://localhost" + addr)
	})

	t.Run()
}

// watchRecording waits for the running session to finish and updates
// the tray menu with the outcome.
func watchRecording(t *tray.Tray, recorder *mocap.Recorder) {
	for {
		status := recorder.Status()
		if status.State != mocap.StateRecording {
			t.SetRecording(false)
			if status.State == mocap.StateDone {
				t.SetLastRecording(status.File)
			} else if status.Error != "" {
				log.Printf("Recording failed: %s", status.Error)
			}
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// openBrowser opens the URL in the default browser.
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

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.physiosync/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
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

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".physiosync", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
