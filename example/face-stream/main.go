package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/swdee/go-facetrack/config"
	"github.com/swdee/go-facetrack/detect"
	"github.com/swdee/go-facetrack/logger"
	"github.com/swdee/go-facetrack/render"
	"github.com/swdee/go-facetrack/tracker"
	"github.com/swdee/go-facetrack/video"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Demo streams a looping video to the browser with face tracks drawn on
// every frame
type Demo struct {
	// vidBuffer buffers the video frames into memory
	vidBuffer []gocv.Mat
	// fps of the source video
	fps float64
	// pool of detector adapters, one is held per client connection
	pool *detect.Pool
	// params used for each client's tracker
	params tracker.Params
}

// NewDemo buffers vidFile and opens poolSize detector adapters from the
// models named in cfg
func NewDemo(vidFile string, cfg *config.Config, poolSize int) (*Demo, error) {

	d := &Demo{
		params: cfg.TrackerParams(),
	}

	err := d.bufferVideo(vidFile)

	if err != nil {
		return nil, fmt.Errorf("error buffering video: %w", err)
	}

	d.pool, err = detect.NewPool(poolSize, func() (*detect.Adapter, error) {
		return detect.Open(cfg.YuNetParams(), cfg.LandmarkParams(),
			cfg.AdapterOptions())
	})

	if err != nil {
		d.Close()
		return nil, fmt.Errorf("error creating detector pool: %w", err)
	}

	return d, nil
}

// bufferVideo reads in the video frames and saves them to a buffer
func (d *Demo) bufferVideo(vidFile string) error {

	src, err := video.Open(vidFile)

	if err != nil {
		return err
	}

	defer src.Close()

	d.fps = src.FPS()

	for {
		img := gocv.NewMat()

		if !src.Next(&img) {
			img.Close()
			break
		}

		d.vidBuffer = append(d.vidBuffer, img)
	}

	if len(d.vidBuffer) == 0 {
		return fmt.Errorf("no frames read from %s", vidFile)
	}

	logger.S().Infof("Buffered %d frames at %.2f FPS", len(d.vidBuffer), d.fps)
	return nil
}

// Stream is the HTTP handler function used to stream video frames to browser
func (d *Demo) Stream(w http.ResponseWriter, r *http.Request) {

	log := logger.Log().With(zap.String("remote", r.RemoteAddr))
	log.Info("New client connection established")

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	adapter := d.pool.Get()
	defer d.pool.Return(adapter)

	ft := tracker.NewFaceTracker(d.params)
	trail := tracker.NewTrail(30)

	resImg := gocv.NewMat()
	defer resImg.Close()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / d.fps))
	defer ticker.Stop()

	frameNum := -1
	// offset keeps frame time increasing as the video loops
	offset := 0.0
	trackFont := render.TrackFont()
	detFont := render.DefaultFont()
	style := render.DefaultTrailStyle()

	for {
		select {
		case <-r.Context().Done():
			log.Info("Client disconnected")
			return

		case <-ticker.C:
		}

		frameNum++
		if frameNum > len(d.vidBuffer)-1 {
			frameNum = 0
			offset += float64(len(d.vidBuffer)) / d.fps
		}

		img := d.vidBuffer[frameNum]
		t := offset + float64(frameNum)/d.fps

		dets, err := adapter.Detect(img)

		if err != nil {
			log.Warn("Error detecting faces", zap.Int("frame", frameNum),
				zap.Error(err))
		}

		tracks, err := ft.Update(t, dets)

		if err != nil {
			log.Error("Error updating tracker", zap.Error(err))
			return
		}

		trail.Add(t, tracks)

		img.CopyTo(&resImg)
		render.Trail(&resImg, tracks, trail, style)
		render.DetectionBoxes(&resImg, dets, detFont, 1)
		render.TrackerBoxes(&resImg, tracks, trackFont)

		buf, err := gocv.IMEncode(".jpg", resImg)

		if err != nil {
			log.Warn("Error encoding frame", zap.Error(err))
			continue
		}

		w.Write([]byte("--frame\r\n"))
		w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
		w.Write(buf.GetBytes())
		w.Write([]byte("\r\n"))
		buf.Close()

		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

// Close releases the buffered frames and detector pool
func (d *Demo) Close() {

	for _, img := range d.vidBuffer {
		img.Close()
	}

	if d.pool != nil {
		d.pool.Close()
	}
}

func main() {

	cfgFile := flag.String("c", "", "Config file (.yaml or .toml) with detector models and tracker settings")
	vidFile := flag.String("v", "../data/interview.mp4", "Video file to run face tracking on")
	httpAddr := flag.String("a", "localhost:8080", "HTTP Address to run server on, format address:port")
	poolSize := flag.Int("s", 2, "Number of detector instances, one per concurrent client")

	flag.Parse()

	cfg, err := config.Load(*cfgFile)

	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	if err := logger.Init(cfg.LoggerOptions()); err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		return
	}

	defer logger.Sync()

	demo, err := NewDemo(*vidFile, cfg, *poolSize)

	if err != nil {
		logger.S().Fatalf("Error creating demo: %v", err)
	}

	defer demo.Close()

	http.HandleFunc("/stream", demo.Stream)

	logger.S().Infof("Open browser and view video at http://%s/stream", *httpAddr)

	if err := http.ListenAndServe(*httpAddr, nil); err != nil {
		logger.S().Errorf("HTTP server stopped: %v", err)
	}
}
