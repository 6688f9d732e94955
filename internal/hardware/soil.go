package hardware

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"irrigation_node/internal/config"

	"github.com/goburrow/modbus"
)

// IIOSoil reads a capacitive probe wired to an ADC channel exposed by the
// Linux IIO subsystem. A dry probe reads near full scale, so
// moisture = (1 - raw/adcMax) * 100.
type IIOSoil struct {
	path   string
	adcMax float64
}

func NewIIOSoil(path string, adcMax float64) *IIOSoil {
	return &IIOSoil{path: path, adcMax: adcMax}
}

func (s *IIOSoil) ReadMoisture() (float64, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("read adc: %w", err)
	}
	raw, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse adc value %q: %w", strings.TrimSpace(string(b)), err)
	}
	return moistureFromRaw(raw, s.adcMax), nil
}

func (s *IIOSoil) Close() error { return nil }

func moistureFromRaw(raw, adcMax float64) float64 {
	pct := (1 - raw/adcMax) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

type registerReader interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
}

// ModbusSoil reads an RS-485 soil probe that reports moisture in one holding
// register.
type ModbusSoil struct {
	mu       sync.Mutex
	handler  *modbus.RTUClientHandler
	client   registerReader
	register uint16
	scale    float64
}

// OpenModbusSoil connects to the probe over Modbus RTU, 8N1.
func OpenModbusSoil(cfg config.ModbusSoil) (*ModbusSoil, error) {
	h := modbus.NewRTUClientHandler(cfg.Port)
	h.BaudRate = cfg.Baud
	h.DataBits = 8
	h.Parity = "N"
	h.StopBits = 1
	h.SlaveId = cfg.SlaveID
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("modbus connect %s: %w", cfg.Port, err)
	}
	return &ModbusSoil{
		handler:  h,
		client:   modbus.NewClient(h),
		register: cfg.Register,
		scale:    cfg.Scale,
	}, nil
}

func (s *ModbusSoil) ReadMoisture() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.client.ReadHoldingRegisters(s.register, 1)
	if err != nil {
		return 0, fmt.Errorf("modbus read register %d: %w", s.register, err)
	}
	if len(b) < 2 {
		return 0, fmt.Errorf("modbus read register %d: short response (%d bytes)", s.register, len(b))
	}
	return float64(binary.BigEndian.Uint16(b)) * s.scale, nil
}

func (s *ModbusSoil) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handler == nil {
		return nil
	}
	err := s.handler.Close()
	s.handler = nil
	if err != nil {
		return fmt.Errorf("modbus close: %w", err)
	}
	return nil
}
