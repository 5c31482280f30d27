// Package pipeline provides the layout pipeline shared by the CLI and the
// HTTP API.
//
// This package turns request options into engine configuration and runs
// the read → layout → render stages with caching. Centralizing it keeps
// defaults, validation and cache keys identical for every entry point.
//
// # Architecture
//
// The pipeline has three independent stages:
//
//  1. Layout: coarsen the dynamic graph and refine positions level by level
//  2. Discretise: cut the continuous graph into time slices
//  3. Render: draw a snapshot of a layout at one time (DOT, SVG, JSON)
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Policy:  "walshaw",
//	    Formats: []string{"svg"},
//	    Time:    4,
//	}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	layout, err := runner.Layout(ctx, g, opts)
//	sliced, err := runner.Discretise(ctx, g, opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dynalayout/pkg/cache"
	"github.com/matzehuels/dynalayout/pkg/coarsen"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
	"github.com/matzehuels/dynalayout/pkg/graph"
	"github.com/matzehuels/dynalayout/pkg/multilevel"
	"github.com/matzehuels/dynalayout/pkg/placement"
	"github.com/matzehuels/dynalayout/pkg/solver"
	"github.com/matzehuels/dynalayout/pkg/temporal"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultPolicy is the default coarsening policy.
	DefaultPolicy = coarsen.PolicyIndependentSet

	// DefaultMinNodes stops coarsening at this many nodes.
	DefaultMinNodes = coarsen.DefaultMinNodes

	// DefaultPlacement is the default placement strategy.
	DefaultPlacement = placement.NameBarycenter

	// DefaultDistance is how far an isolated member is placed from its
	// cluster.
	DefaultDistance = 1.0

	// DefaultCooling is the default cooling strategy.
	DefaultCooling = multilevel.CoolingLinear

	// DefaultIterations is the solver budget on the coarsest level.
	DefaultIterations = multilevel.DefaultIterations

	// DefaultInitial seeds the coarsest level by solving it as placed.
	DefaultInitial = InitialSolve

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultScale maps one layout unit to one point when rendering.
	DefaultScale = 1.0
)

// Initial layout names.
const (
	InitialSolve  = "solve"
	InitialRandom = "random"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = []string{FormatSVG, FormatDOT, FormatJSON}

// ValidPolicies is the set of supported coarsening policies.
var ValidPolicies = []string{coarsen.PolicyIndependentSet, coarsen.PolicyWalshaw, coarsen.PolicySolarMerger}

// ValidMasses is the set of supported own-cluster masses.
var ValidMasses = []string{coarsen.MassCount, coarsen.MassSolar}

// ValidPlacements is the set of supported placement strategies.
var ValidPlacements = []string{placement.NameBarycenter, placement.NameIdentity}

// ValidCoolings is the set of supported cooling strategies.
var ValidCoolings = []string{multilevel.CoolingLinear, multilevel.CoolingIdentity}

// ValidInitials is the set of supported initial layouts.
var ValidInitials = []string{InitialSolve, InitialRandom}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests and mirrors the
// tables of the CLI config file.
type Options struct {
	// Coarsening options
	Policy    string `json:"policy,omitempty"`
	Mass      string `json:"mass,omitempty"`
	MinNodes  int    `json:"min_nodes,omitempty"`
	MaxLevels int    `json:"max_levels,omitempty"`

	// Placement options
	Placement string  `json:"placement,omitempty"`
	Distance  float64 `json:"distance,omitempty"`
	Jitter    float64 `json:"jitter,omitempty"`

	// Cooling options; zero slope and floor take the linear defaults
	Cooling string  `json:"cooling,omitempty"`
	Slope   float64 `json:"slope,omitempty"`
	Floor   float64 `json:"floor,omitempty"`

	// Solver options
	Iterations int     `json:"iterations,omitempty"`
	EdgeLength float64 `json:"edge_length,omitempty"`
	MaxMove    float64 `json:"max_move,omitempty"`
	Initial    string  `json:"initial,omitempty"`
	Seed       uint64  `json:"seed,omitempty"`

	// Discretise options: either snapshot times or explicit intervals
	SnapTimes []float64 `json:"snap_times,omitempty"`
	Radius    float64   `json:"radius,omitempty"`
	Intervals []string  `json:"intervals,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Time     float64  `json:"time,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh bypasses cached results.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Layout is the laid-out graph with its hierarchy summary.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Levels     int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errs.ValidateFormat(format, ValidFormats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePolicy checks that a coarsening policy is valid.
func ValidatePolicy(policy string) error {
	return oneOf("policy", policy, ValidPolicies)
}

// ValidatePlacement checks that a placement strategy is valid.
func ValidatePlacement(name string) error {
	return oneOf("placement", name, ValidPlacements)
}

// ValidateCooling checks that a cooling strategy is valid.
func ValidateCooling(name string) error {
	return oneOf("cooling", name, ValidCoolings)
}

// ValidateInitial checks that an initial layout is valid.
func ValidateInitial(name string) error {
	return oneOf("initial", name, ValidInitials)
}

func oneOf(field, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid %s: %q (must be one of: %v)", field, value, allowed)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForDiscretise(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Policy == "" {
		o.Policy = DefaultPolicy
	}
	if o.Mass == "" {
		o.Mass = coarsen.MassCount
		if o.Policy == coarsen.PolicySolarMerger {
			o.Mass = coarsen.MassSolar
		}
	}
	if o.MinNodes == 0 {
		o.MinNodes = DefaultMinNodes
	}
	if o.Placement == "" {
		o.Placement = DefaultPlacement
	}
	if o.Distance == 0 {
		o.Distance = DefaultDistance
	}
	if o.Cooling == "" {
		o.Cooling = DefaultCooling
	}
	if o.Slope == 0 && o.Floor == 0 {
		lin := multilevel.DefaultLinear()
		o.Slope, o.Floor = lin.Slope, lin.Floor
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	defaults := solver.DefaultParams()
	if o.EdgeLength == 0 {
		o.EdgeLength = defaults.DesiredDistance
	}
	if o.MaxMove == 0 {
		o.MaxMove = defaults.MaxMovement
	}
	if o.Initial == "" {
		o.Initial = DefaultInitial
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets defaults and validates layout options.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidatePolicy(o.Policy); err != nil {
		return err
	}
	if err := oneOf("mass", o.Mass, ValidMasses); err != nil {
		return err
	}
	if err := ValidatePlacement(o.Placement); err != nil {
		return err
	}
	if err := ValidateCooling(o.Cooling); err != nil {
		return err
	}
	if err := ValidateInitial(o.Initial); err != nil {
		return err
	}
	switch {
	case o.MinNodes < 0 || o.MaxLevels < 0:
		return errs.New(errs.ErrCodeInvalidInput, "min_nodes and max_levels must not be negative")
	case o.Iterations < 0:
		return errs.New(errs.ErrCodeInvalidInput, "iterations must not be negative")
	case o.EdgeLength < 0 || o.MaxMove < 0 || o.Distance < 0 || o.Jitter < 0:
		return errs.New(errs.ErrCodeInvalidInput, "edge_length, max_move, distance and jitter must not be negative")
	}
	return nil
}

// ValidateForDiscretise validates discretisation options. Snapshot times
// and intervals are mutually exclusive; neither is required here.
func (o *Options) ValidateForDiscretise() error {
	if len(o.SnapTimes) > 0 && len(o.Intervals) > 0 {
		return errs.New(errs.ErrCodeInvalidInput, "snap_times and intervals are mutually exclusive")
	}
	if len(o.SnapTimes) > 0 {
		return errs.ValidateSnapTimes(o.SnapTimes)
	}
	if len(o.Intervals) > 0 {
		_, err := o.ParsedIntervals()
		return err
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "scale must not be negative")
	}
	return ValidateFormats(o.Formats)
}

// ParsedIntervals parses Intervals and checks that they are sorted and
// non-overlapping.
func (o *Options) ParsedIntervals() ([]temporal.Interval, error) {
	ivs := make([]temporal.Interval, len(o.Intervals))
	for i, s := range o.Intervals {
		iv, err := temporal.ParseInterval(s)
		if err != nil {
			return nil, err
		}
		ivs[i] = iv
	}
	if err := temporal.ValidateIntervals(ivs); err != nil {
		return nil, err
	}
	return ivs, nil
}

// MultilevelOptions translates validated options into engine options.
func (o *Options) MultilevelOptions() (multilevel.Options, error) {
	if err := o.ValidateForLayout(); err != nil {
		return multilevel.Options{}, err
	}
	policy, _ := coarsen.PolicyByName(o.Policy)
	place, err := placement.ByName(o.Placement, o.Mass, o.Distance, o.Jitter)
	if err != nil {
		return multilevel.Options{}, err
	}
	cooling, err := multilevel.CoolingByName(o.Cooling, o.Slope, o.Floor)
	if err != nil {
		return multilevel.Options{}, err
	}
	params := solver.DefaultParams()
	params.DesiredDistance = o.EdgeLength
	params.MaxMovement = o.MaxMove

	initial := multilevel.InitialSolve
	if o.Initial == InitialRandom {
		initial = multilevel.InitialRandom
	}

	return multilevel.Options{
		Coarsening: coarsen.Options{
			MinNodes:  o.MinNodes,
			MaxLevels: o.MaxLevels,
			Policy:    policy,
			Mass:      o.Mass,
			Logger:    o.Logger,
		},
		Placement:  place,
		Params:     params,
		Iterations: o.Iterations,
		Cooling:    cooling,
		Initial:    initial,
		Seed:       o.Seed,
		Logger:     o.Logger,
	}, nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Policy:     o.Policy,
		Mass:       o.Mass,
		MinNodes:   o.MinNodes,
		MaxLevels:  o.MaxLevels,
		Placement:  o.Placement,
		Distance:   o.Distance,
		Jitter:     o.Jitter,
		Cooling:    o.Cooling,
		Slope:      o.Slope,
		Floor:      o.Floor,
		Iterations: o.Iterations,
		EdgeLength: o.EdgeLength,
		MaxMove:    o.MaxMove,
		Initial:    o.Initial,
		Seed:       o.Seed,
	}
}

// DiscretiseKeyOpts returns cache key options for discretisation.
func (o *Options) DiscretiseKeyOpts() cache.DiscretiseKeyOpts {
	return cache.DiscretiseKeyOpts{
		Times:     o.SnapTimes,
		Radius:    o.Radius,
		Intervals: o.Intervals,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Time:     o.Time,
		Scale:    o.Scale,
		Detailed: o.Detailed,
	}
}

// ApplyCoarsening overrides the coarsening fields from a generic mapping,
// such as the [coarsening] table of a config file. Keys are those of
// [coarsen.ParseOptions].
func (o *Options) ApplyCoarsening(m map[string]any) error {
	if len(m) == 0 {
		return nil
	}
	parsed, err := coarsen.ParseOptions(m)
	if err != nil {
		return err
	}
	if _, ok := m[coarsen.OptMinNodes]; ok {
		o.MinNodes = parsed.MinNodes
	}
	if _, ok := m[coarsen.OptMaxLevels]; ok {
		o.MaxLevels = parsed.MaxLevels
	}
	if parsed.Policy != nil {
		o.Policy = parsed.Policy.Name()
	}
	if parsed.Mass != "" {
		o.Mass = parsed.Mass
	}
	o.validated = false
	return nil
}

