// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

import (
	"fmt"
	"sort"
	"strings"
)

// Profile selects between the two historical interpreter behaviours.
type Profile struct {
	Name string

	// LogicResetsFlag clears VF after 8xy1, 8xy2 and 8xy3.
	LogicResetsFlag bool

	InstructionsPerTick int

	// ReservedSize bytes at the top of memory are never program space.
	ReservedSize int
}

var ProfileModern = Profile{
	Name:                "modern",
	LogicResetsFlag:     false,
	InstructionsPerTick: 1,
	ReservedSize:        0,
}

// ProfileLegacy mirrors the COSMAC VIP layout, where the call stack and the
// display buffer live in the last 352 bytes of memory.
var ProfileLegacy = Profile{
	Name:                "legacy",
	LogicResetsFlag:     true,
	InstructionsPerTick: 12,
	ReservedSize:        MEMORY_SIZE - MEMSPACE_LEGACY_STACK,
}

var profiles = map[string]Profile{
	ProfileModern.Name: ProfileModern,
	ProfileLegacy.Name: ProfileLegacy,
}

func LookupProfile(name string) (Profile, error) {
	if profile, exists := profiles[strings.ToLower(name)]; exists {
		return profile, nil
	}

	return Profile{}, fmt.Errorf(
		"unknown profile '%s' (want one of %s)",
		name,
		strings.Join(ProfileNames(), ", "),
	)
}

func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// ProgramEnd is the first address past the program region.
func (p Profile) ProgramEnd() int {
	return MEMORY_SIZE - p.ReservedSize
}

// Capacity is the largest ROM the profile can load.
func (p Profile) Capacity() int {
	return p.ProgramEnd() - MEMSPACE_PROGRAM
}
