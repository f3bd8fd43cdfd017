package box

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danmuck/slotbox/internal/admin"
	"github.com/danmuck/slotbox/internal/comms"
	"github.com/danmuck/slotbox/internal/eeprom"
	"github.com/danmuck/slotbox/internal/logging"
	"github.com/danmuck/slotbox/internal/observability"
)

var (
	ErrInvalidHeartbeatInterval = errors.New("box: invalid heartbeat interval")
	ErrInvalidUpdateInterval    = errors.New("box: invalid update interval")
	ErrImagePathRequired        = errors.New("box: image path required")
	ErrInvalidImageSize         = errors.New("box: invalid image size")
)

// ServiceConfig configures the slotboxd standalone runtime.
type ServiceConfig struct {
	DeviceID          string
	ImagePath         string
	ImageSize         uint16
	CommandListenAddr string
	AdminListenAddr   string
	AdminAuthToken    string
	CORSOrigins       []string
	HeartbeatInterval time.Duration
	UpdateInterval    time.Duration
	ValueLogInterval  time.Duration
}

// Service defaults for standalone runtime configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DeviceID:          "box.local",
		ImagePath:         "slotbox.img",
		ImageSize:         2048,
		CommandListenAddr: "127.0.0.1:21314",
		AdminListenAddr:   "",
		HeartbeatInterval: 5 * time.Second,
		UpdateInterval:    50 * time.Millisecond,
		ValueLogInterval:  0,
	}
}

// Service runs one box lifecycle as a standalone process.
type Service struct {
	cfg ServiceConfig
	box *Box
	dev *eeprom.FileDevice
}

// Service constructor using default standalone config.
func NewService() *Service {
	return NewServiceWithConfig(DefaultServiceConfig())
}

// Service constructor using explicit config.
func NewServiceWithConfig(cfg ServiceConfig) *Service {
	return &Service{cfg: cfg}
}

// Run blocks until process signal shutdown.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.bootstrap(); err != nil {
		return err
	}
	defer s.shutdown()
	return s.serve(ctx)
}

// Box exposes the assembled runtime, mainly for tests.
func (s *Service) Box() *Box {
	return s.box
}

// Bootstrap sequence: open or create the image, assemble the box,
// replay the active profile.
func (s *Service) bootstrap() error {
	if s.cfg.HeartbeatInterval <= 0 {
		return ErrInvalidHeartbeatInterval
	}
	if s.cfg.UpdateInterval <= 0 {
		return ErrInvalidUpdateInterval
	}
	path := strings.TrimSpace(s.cfg.ImagePath)
	if path == "" {
		return ErrImagePathRequired
	}

	dev, err := eeprom.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if s.cfg.ImageSize == 0 {
			return ErrInvalidImageSize
		}
		logging.Infof("box.Service.bootstrap creating image path=%q size=%d", path, s.cfg.ImageSize)
		dev, err = eeprom.CreateFile(path, eeprom.Pointer(s.cfg.ImageSize))
	}
	if err != nil {
		return err
	}
	s.dev = dev

	b, err := New(dev, Options{DeviceID: s.cfg.DeviceID})
	if err != nil {
		_ = dev.Close()
		return err
	}
	s.box = b

	logging.Infof(
		"box.Service.bootstrap ready device_id=%q image=%q size=%d active_profile=%d objects=%d",
		s.cfg.DeviceID, path, dev.Len(), b.ActiveProfile(), b.Resident(),
	)
	return nil
}

// Main loop: command endpoint, optional admin endpoint, update cycles,
// heartbeat logging, and periodic image flushes.
func (s *Service) serve(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	cmdErr := make(chan error, 1)
	adminErr := make(chan error, 1)
	updateDone := make(chan struct{})

	go func() {
		cmd := comms.NewServer(comms.ServerConfig{
			ListenAddr:  s.cfg.CommandListenAddr,
			ReadTimeout: comms.DefaultServerConfig().ReadTimeout,
			MaxLineLen:  comms.DefaultServerConfig().MaxLineLen,
		}, s.box)
		cmdErr <- cmd.Serve(ctx)
	}()
	if strings.TrimSpace(s.cfg.AdminListenAddr) != "" {
		go func() {
			adm := admin.NewServer(admin.Config{
				ListenAddr:  s.cfg.AdminListenAddr,
				DeviceID:    s.cfg.DeviceID,
				CORSOrigins: s.cfg.CORSOrigins,
				AuthToken:   s.cfg.AdminAuthToken,
			}, s.box)
			adminErr <- adm.Serve(ctx)
		}()
	}
	go func() {
		defer close(updateDone)
		s.updateLoop(ctx)
	}()

	var valueLog <-chan time.Time
	if s.cfg.ValueLogInterval > 0 {
		vt := time.NewTicker(s.cfg.ValueLogInterval)
		defer vt.Stop()
		valueLog = vt.C
	}

	for {
		select {
		case <-ctx.Done():
			<-updateDone
			logging.Infof("box.Service.serve shutdown")
			return nil
		case err := <-cmdErr:
			if err != nil {
				return err
			}
		case err := <-adminErr:
			if err != nil {
				return err
			}
		case <-valueLog:
			s.box.LogValues()
		case <-ticker.C:
			s.heartbeat()
		}
	}
}

// Update cycle driver. Objects that request no delay are paced by
// UpdateInterval so an idle tree does not spin.
func (s *Service) updateLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := time.Now()
		wait := s.box.UpdateCycle()
		observability.RecordUpdateCycle(s.cfg.DeviceID, time.Since(start))
		if wait > 0 {
			continue
		}
		if err := s.waitIdle(ctx); err != nil {
			return
		}
	}
}

func (s *Service) waitIdle(ctx context.Context) error {
	timer := time.NewTimer(s.cfg.UpdateInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) heartbeat() {
	h := s.box.Health()
	st := s.box.Storage()
	observability.SetObjectsResident(s.cfg.DeviceID, h.Objects)
	observability.SetEepromUsed(s.cfg.DeviceID, st.Used)
	s.flushImage()
	logging.Infof(
		"box.Service.heartbeat device_id=%q uptime_ms=%d objects=%d active_profile=%d eeprom_used=%d",
		h.DeviceID, h.UptimeMS, h.Objects, h.ActiveProfile, st.Used,
	)
}

func (s *Service) flushImage() {
	if s.dev == nil || !s.dev.Dirty() {
		return
	}
	if err := s.dev.Flush(); err != nil {
		logging.Errorf("box.Service.flushImage err=%v", err)
		return
	}
	logging.Debugf("box.Service.flushImage ok path=%q", s.cfg.ImagePath)
}

func (s *Service) shutdown() {
	s.flushImage()
	if s.dev == nil {
		return
	}
	if err := s.dev.Close(); err != nil {
		logging.Errorf("box.Service.shutdown close err=%v", err)
	}
}
