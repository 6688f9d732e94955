package hardware

import (
	"errors"
	"fmt"
	"io"
	"time"

	"irrigation_node/internal/config"
	"irrigation_node/internal/logger"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// SensorSet is what the telemetry producer reads.
type SensorSet interface {
	ReadSoilMoisture() (float64, error)
	ReadLightIntensity() (float64, error)
	ReadClimate() (float64, float64, error)
	Close() error
}

// OutputSet is what the node drives.
type OutputSet interface {
	SetPump(on bool) error
	SetFan(on bool) error
	SetLight(on bool) error
	SetHeartbeat(on bool) error
	Close() error
}

// Hardware is the opened sensor and output set of one node.
type Hardware struct {
	Sensors SensorSet
	Outputs OutputSet
	closers []io.Closer
}

// Open initializes the drivers selected in cfg. When both sides are
// simulated they share one plant model.
func Open(sc config.Sensors, ac config.Actuators, log *logger.Logger) (*Hardware, error) {
	if sc.Driver == config.DriverPeriph || ac.Driver == config.DriverPeriph {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize periph: %w", err)
		}
	}

	hw := &Hardware{}
	var sim *Sim
	if sc.Driver == config.DriverSim || ac.Driver == config.DriverSim {
		sim = NewSim(time.Now)
	}

	switch ac.Driver {
	case config.DriverSim:
		hw.Outputs = sim
	case config.DriverPeriph:
		out, err := openGPIOOutputs(ac)
		if err != nil {
			return nil, err
		}
		hw.Outputs = out
	default:
		return nil, fmt.Errorf("unknown actuators driver %q", ac.Driver)
	}

	switch sc.Driver {
	case config.DriverSim:
		hw.Sensors = sim
	case config.DriverPeriph:
		sensors, closers, err := openI2CSensors(sc)
		if err != nil {
			_ = hw.Outputs.Close()
			return nil, err
		}
		hw.Sensors = sensors
		hw.closers = closers
	default:
		_ = hw.Outputs.Close()
		return nil, fmt.Errorf("unknown sensors driver %q", sc.Driver)
	}

	log.Infow("hardware_ready",
		"sensors", sc.Driver,
		"soil", sc.Soil.Source,
		"actuators", ac.Driver,
		"pump_active_low", ac.PumpActiveLow,
	)
	return hw, nil
}

// Close switches the outputs off and releases the buses.
func (h *Hardware) Close() error {
	errs := []error{h.Outputs.Close(), h.Sensors.Close()}
	for _, c := range h.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func openGPIOOutputs(ac config.Actuators) (*GPIOOutputs, error) {
	pump, err := openPin(ac.PumpPin)
	if err != nil {
		return nil, err
	}
	fan, err := openPin(ac.FanPin)
	if err != nil {
		return nil, err
	}
	light, err := openPin(ac.LightPin)
	if err != nil {
		return nil, err
	}
	var heartbeat outputPin
	if ac.HeartbeatPin != "" {
		if heartbeat, err = openPin(ac.HeartbeatPin); err != nil {
			return nil, err
		}
	}

	out := NewGPIOOutputs(pump, fan, light, heartbeat, ac.PumpActiveLow)
	// Relay released before anything else can run.
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("reset outputs: %w", err)
	}
	return out, nil
}

func openPin(name string) (gpio.PinIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("failed to find pin '%s'", name)
	}
	return pin, nil
}

func openI2CSensors(sc config.Sensors) (*I2CSensors, []io.Closer, error) {
	var closers []io.Closer
	fail := func(err error) (*I2CSensors, []io.Closer, error) {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, nil, err
	}

	lightBus, err := i2creg.Open(sc.LightBus)
	if err != nil {
		return fail(fmt.Errorf("open i2c bus %s: %w", sc.LightBus, err))
	}
	closers = append(closers, lightBus)

	var climateBus i2c.Bus = lightBus
	if sc.ClimateBus != sc.LightBus {
		bus, err := i2creg.Open(sc.ClimateBus)
		if err != nil {
			return fail(fmt.Errorf("open i2c bus %s: %w", sc.ClimateBus, err))
		}
		closers = append(closers, bus)
		climateBus = bus
	}

	soil, err := openSoil(sc.Soil)
	if err != nil {
		return fail(err)
	}

	sensors, err := NewI2CSensors(lightBus, climateBus, soil)
	if err != nil {
		_ = soil.Close()
		return fail(err)
	}
	return sensors, closers, nil
}

func openSoil(cfg config.Soil) (SoilSource, error) {
	switch cfg.Source {
	case config.SoilIIO:
		return NewIIOSoil(cfg.IIOPath, cfg.ADCMax), nil
	case config.SoilModbus:
		probe, err := OpenModbusSoil(cfg.Modbus)
		if err != nil {
			return nil, err
		}
		return probe, nil
	}
	return nil, fmt.Errorf("unknown soil source %q", cfg.Source)
}
