// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package simulator

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/relabs-tech/boat_voice/internal/location"
	"github.com/relabs-tech/boat_voice/internal/packet"
)

const (
	defaultSpeed     = 2.5  // m/s
	defaultWindSpeed = 6.0  // m/s
	defaultWindDir   = 225  // degrees, where the wind blows from
	shoreDepth       = 3.0  // metres; the helmsman turns away below this
	lookAhead        = 25.0 // metres
	shoreTurnRate    = 30.0 // degrees per second
)

// DefaultOrigin is the centre of the simulated lake.
var DefaultOrigin = location.LatLng{Lat: 52.2920, Lng: -0.3220}

// Boat is a simulated vessel sailing over a depth map.
type Boat struct {
	depth  *DepthMap
	origin location.LatLng
	rnd    *rand.Rand

	east, north float64 // metres from origin
	heading     float64 // degrees from north
	speed       float64 // m/s through water
	windDir     float64 // true wind direction, degrees
	windSpeed   float64 // true wind speed, m/s

	gust float64
}

// Option configures a Boat.
type Option func(b *Boat)

// WithOrigin places the map centre at o.
func WithOrigin(o location.LatLng) Option {
	return func(b *Boat) { b.origin = o }
}

// WithSeed makes the track reproducible.
func WithSeed(seed uint64) Option {
	return func(b *Boat) { b.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithHeading sets the initial heading in degrees.
func WithHeading(deg float64) Option {
	return func(b *Boat) { b.heading = normalize(deg) }
}

// WithSpeed sets the speed through water in m/s.
func WithSpeed(mps float64) Option {
	return func(b *Boat) {
		if mps >= 0 {
			b.speed = mps
		}
	}
}

// WithWind sets the true wind direction and speed.
func WithWind(dir, mps float64) Option {
	return func(b *Boat) {
		b.windDir = normalize(dir)
		if mps >= 0 {
			b.windSpeed = mps
		}
	}
}

// NewBoat starts a boat at the centre of depth.
func NewBoat(depth *DepthMap, opts ...Option) *Boat {
	b := &Boat{
		depth:     depth,
		origin:    DefaultOrigin,
		rnd:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		speed:     defaultSpeed,
		windDir:   defaultWindDir,
		windSpeed: defaultWindSpeed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Step advances the simulation by dt.
func (b *Boat) Step(dt time.Duration) {
	secs := dt.Seconds()
	if secs <= 0 {
		return
	}

	rad := b.heading * math.Pi / 180
	ahead := b.depth.Depth(b.east+lookAhead*math.Sin(rad), b.north+lookAhead*math.Cos(rad))
	if ahead < shoreDepth {
		b.heading = normalize(b.heading + shoreTurnRate*secs)
	} else {
		b.heading = normalize(b.heading + b.rnd.NormFloat64()*secs)
	}

	rad = b.heading * math.Pi / 180
	b.east += b.speed * secs * math.Sin(rad)
	b.north += b.speed * secs * math.Cos(rad)

	b.gust = math.Max(-b.windSpeed, 0.8*b.gust+0.5*b.rnd.NormFloat64())
}

// Position returns the boat's latitude and longitude.
func (b *Boat) Position() location.LatLng {
	lat := b.origin.Lat + b.north/location.EarthRadius*180/math.Pi
	lng := b.origin.Lng + b.east/(location.EarthRadius*math.Cos(b.origin.Lat*math.Pi/180))*180/math.Pi
	return location.LatLng{Lat: lat, Lng: lng}
}

// Depth returns the water depth under the boat.
func (b *Boat) Depth() float64 {
	return b.depth.Depth(b.east, b.north)
}

// Heading returns the boat's heading in degrees.
func (b *Boat) Heading() float64 { return b.heading }

// ApparentWind returns the wind angle from the bow and the wind speed.
func (b *Boat) ApparentWind() (angle, speed float64) {
	return normalize(b.windDir - b.heading), b.windSpeed + b.gust
}

// Packets renders the current readings as instrument packets.
func (b *Boat) Packets(at time.Time) ([]packet.Packet, error) {
	pos := b.Position()
	windAngle, windSpeed := b.ApparentWind()

	builders := []func() (packet.Packet, error){
		func() (packet.Packet, error) { return Position(at, pos.Lat, pos.Lng) },
		func() (packet.Packet, error) { return VesselHeading(at, b.heading, 0, 0) },
		func() (packet.Packet, error) { return Speed(at, b.speed) },
		func() (packet.Packet, error) { return WaterDepth(at, b.Depth(), 0) },
		func() (packet.Packet, error) { return WindData(at, windSpeed, windAngle) },
	}

	out := make([]packet.Packet, 0, len(builders))
	for _, build := range builders {
		p, err := build()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
