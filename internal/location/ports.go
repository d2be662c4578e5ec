// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package location

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPorts is used when no ports file is configured.
var DefaultPorts = []Port{
	{Name: "King's Lynn", Location: LatLng{Lat: 52.7543, Lng: 0.3947}},
	{Name: "Wells-next-the-Sea", Location: LatLng{Lat: 52.9553, Lng: 0.8516}},
	{Name: "Great Yarmouth", Location: LatLng{Lat: 52.5950, Lng: 1.7360}},
	{Name: "Lowestoft", Location: LatLng{Lat: 52.4735, Lng: 1.7490}},
	{Name: "Harwich", Location: LatLng{Lat: 51.9456, Lng: 1.2890}},
	{Name: "Dover", Location: LatLng{Lat: 51.1209, Lng: 1.3313}},
	{Name: "Portsmouth", Location: LatLng{Lat: 50.7989, Lng: -1.1081}},
	{Name: "Southampton", Location: LatLng{Lat: 50.8970, Lng: -1.4040}},
	{Name: "Poole", Location: LatLng{Lat: 50.7130, Lng: -1.9870}},
	{Name: "Plymouth", Location: LatLng{Lat: 50.3650, Lng: -4.1420}},
	{Name: "Falmouth", Location: LatLng{Lat: 50.1526, Lng: -5.0664}},
}

// Directory answers nearest-port questions.
type Directory struct {
	ports []Port
}

// NewDirectory returns a directory over ports.
func NewDirectory(ports []Port) *Directory {
	cp := make([]Port, len(ports))
	copy(cp, ports)
	return &Directory{ports: cp}
}

type portsFile struct {
	Ports []Port `yaml:"ports"`
}

// LoadDirectory reads a YAML ports file of the form
//
//	ports:
//	  - name: Harwich
//	    location: {lat: 51.9456, lng: 1.289}
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ports file: %w", err)
	}

	var f portsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse ports file %s: %w", path, err)
	}
	if len(f.Ports) == 0 {
		return nil, fmt.Errorf("ports file %s: %w", path, ErrNoPorts)
	}
	for i, p := range f.Ports {
		if p.Name == "" {
			return nil, fmt.Errorf("ports file %s: port %d has no name", path, i)
		}
	}
	return NewDirectory(f.Ports), nil
}

// Ports returns a copy of the known ports.
func (d *Directory) Ports() []Port {
	out := make([]Port, len(d.ports))
	copy(out, d.ports)
	return out
}

// Nearest returns the port closest to from.
func (d *Directory) Nearest(from LatLng) (Port, error) {
	if len(d.ports) == 0 {
		return Port{}, ErrNoPorts
	}
	best := d.ports[0]
	bestDist := Distance(from, best.Location)
	for _, p := range d.ports[1:] {
		if dist := Distance(from, p.Location); dist < bestDist {
			best, bestDist = p, dist
		}
	}
	return best, nil
}
