package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/fogsim/offload-sim/sim/policy"
	"github.com/fogsim/offload-sim/sim/topology"
)

// Config parameterizes a single simulation run (spec.md §4.7/§6).
type Config struct {
	NumFog       int
	NumIoT       int
	Cells        int
	Ticks        int64
	Seed         int64
	PGen         float64 // per-tick per-IoT-device task generation probability
	PolicyName   policy.Name
	RefreshTicks int // controller.UpdateStatus cadence, reference value 10
}

// DefaultConfig returns the reference-run parameters used throughout
// spec.md §4.7 and §8's scenarios.
func DefaultConfig() Config {
	return Config{
		NumFog:       12,
		NumIoT:       30,
		Cells:        3,
		Ticks:        200,
		Seed:         42,
		PGen:         0.2,
		PolicyName:   policy.NameHybrid,
		RefreshTicks: 10,
	}
}

// Validate rejects configurations that cannot produce a meaningful run
// (spec.md §7: configuration errors are fatal at construction).
func (c Config) Validate() error {
	if c.NumFog <= 0 {
		return fmt.Errorf("config: fog device count must be positive, got %d", c.NumFog)
	}
	if c.NumIoT <= 0 {
		return fmt.Errorf("config: iot device count must be positive, got %d", c.NumIoT)
	}
	if c.Cells <= 0 {
		return fmt.Errorf("config: cell count must be positive, got %d", c.Cells)
	}
	if c.Cells > c.NumFog/3 && c.NumFog >= 3 {
		return fmt.Errorf("config: cells (%d) must not exceed fog/3 (%d)", c.Cells, c.NumFog/3)
	}
	if c.Ticks <= 0 {
		return fmt.Errorf("config: ticks must be positive, got %d", c.Ticks)
	}
	if c.PGen < 0 || c.PGen > 1 {
		return fmt.Errorf("config: p_gen must be in [0,1], got %f", c.PGen)
	}
	if !policy.IsValidName(string(c.PolicyName)) {
		return fmt.Errorf("config: unknown policy %q", c.PolicyName)
	}
	if c.RefreshTicks <= 0 {
		return fmt.Errorf("config: refresh_ticks must be positive, got %d", c.RefreshTicks)
	}
	return nil
}

// Simulation drives the discrete-step tick loop over a built topology of
// fog/IoT devices under one offloading policy (spec.md §4.7).
type Simulation struct {
	cfg Config

	Fogs []*FogDevice
	IoTs []*IoTDevice

	Controller *Controller
	Metrics    *Metrics

	trafficRNG *rand.Rand
	clock      int64
}

// NewSimulation validates cfg, builds the fog/IoT topology (generation +
// k-means clustering + master election), and wires a fresh Controller
// with the configured policy.
func NewSimulation(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rngs := NewPartitionedRNG(cfg.Seed)
	fogs, err := generateFogDevices(cfg, rngs.Stream(StreamTopology))
	if err != nil {
		return nil, err
	}
	if err := clusterFogDevices(fogs, cfg.Cells, rngs.SeedFor("clusterer")); err != nil {
		return nil, err
	}
	iots := generateIoTDevices(cfg, fogs, rngs.Stream(StreamIoTPlacement))

	active := policy.New(cfg.PolicyName, rngs.SeedFor(StreamPolicy))
	ctrl := NewController(fogs, active, cfg.RefreshTicks)

	return &Simulation{
		cfg:        cfg,
		Fogs:       fogs,
		IoTs:       iots,
		Controller: ctrl,
		Metrics:    NewMetrics(),
		trafficRNG: rngs.Stream(StreamTraffic),
	}, nil
}

func generateFogDevices(cfg Config, rng *rand.Rand) ([]*FogDevice, error) {
	fogs := make([]*FogDevice, 0, cfg.NumFog)
	for i := 0; i < cfg.NumFog; i++ {
		id := fmt.Sprintf("fog-%d", i)
		pos := Position{X: rng.Float64() * 1000, Y: rng.Float64() * 1000}
		totalMIPS := 500 + rng.Float64()*1500
		ram := 1024 + rng.Float64()*3072
		storage := 10000 + rng.Float64()*40000
		bandwidth := 10 + rng.Float64()*90
		maxQueue := 10 + rng.Intn(21)
		d, err := NewFogDevice(id, pos, totalMIPS, ram, storage, bandwidth, maxQueue)
		if err != nil {
			return nil, err
		}
		fogs = append(fogs, d)
	}
	return fogs, nil
}

func clusterFogDevices(fogs []*FogDevice, cells int, clustererSeed int64) error {
	points := make([]topology.Point, len(fogs))
	for i, f := range fogs {
		points[i] = topology.Point{ID: f.ID(), X: f.Pos.X, Y: f.Pos.Y}
	}
	result, err := topology.Run(points, cells, clustererSeed)
	if err != nil {
		return err
	}
	byID := make(map[string]*FogDevice, len(fogs))
	for _, f := range fogs {
		byID[f.ID()] = f
	}
	for _, cell := range result.Cells {
		for _, id := range cell.Members {
			d := byID[id]
			d.CellID = cell.CellID
			members := make([]string, 0, len(cell.Members)-1)
			for _, m := range cell.Members {
				if m != id {
					members = append(members, m)
				}
			}
			d.CellMembers = members
			d.Role = Member
		}
		if cell.MasterID != "" {
			byID[cell.MasterID].Role = Master
		}
	}
	return nil
}

func generateIoTDevices(cfg Config, fogs []*FogDevice, rng *rand.Rand) []*IoTDevice {
	iots := make([]*IoTDevice, 0, cfg.NumIoT)
	for i := 0; i < cfg.NumIoT; i++ {
		id := fmt.Sprintf("iot-%d", i)
		pos := Position{X: rng.Float64() * 1000, Y: rng.Float64() * 1000}
		fogID := NearestFog(pos, fogs)
		iots = append(iots, NewIoTDevice(id, pos, fogID))
	}
	return iots
}

// Run drives the simulation for cfg.Ticks discrete steps, per spec.md
// §4.7: generation phase, per-device tick phase, then (every
// RefreshTicks ticks) the controller's policy refresh. At termination it
// force-completes in-flight work on every device.
func (s *Simulation) Run() {
	byID := make(map[string]*FogDevice, len(s.Fogs))
	for _, f := range s.Fogs {
		byID[f.ID()] = f
	}

	taskSeq := 0
	for tick := int64(0); tick < s.cfg.Ticks; tick++ {
		s.clock = tick

		// Generation phase.
		for _, iot := range s.IoTs {
			if s.trafficRNG.Float64() >= s.cfg.PGen {
				continue
			}
			size := 300 + s.trafficRNG.Intn(1701)   // U[300, 2000]
			deadline := 5 + s.trafficRNG.Intn(21)    // U[5, 25]
			urgent := s.trafficRNG.Float64() < 0.2   // Bernoulli(0.2)
			id := fmt.Sprintf("task-%d", taskSeq)
			taskSeq++
			t := NewTask(id, iot.ID, size, deadline, urgent, tick)
			s.Metrics.RecordGeneration()

			srcFog := byID[iot.FogID]
			if srcFog == nil {
				continue
			}
			s.Controller.ProcessTask(srcFog, t)
		}

		// Per-device tick phase, stable order by device index.
		for _, f := range s.Fogs {
			f.Scheduler.Tick()
			s.Metrics.SampleUtilization(f.ID(), f.Utilization())
		}

		s.Controller.UpdateStatus()

		logrus.Debugf("[tick %05d] generated=%d completed~ dropped=%d", tick, s.Metrics.Generated, s.Controller.Dropped)
	}

	for _, f := range s.Fogs {
		f.Scheduler.ForceCompleteAll()
	}
}

// Report builds the final Summary for this run.
func (s *Simulation) Report(config string) Summary {
	return s.Metrics.Build(string(s.cfg.PolicyName), config, s.Fogs, s.Controller.Dropped, s.Controller.Offloaded)
}
