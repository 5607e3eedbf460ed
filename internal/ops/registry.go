/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ops

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"
)

// CommandGroup represents the operational classification of commands
type CommandGroup string

const (
	GroupMigrate CommandGroup = "migrate" // rewrite source files
	GroupInspect CommandGroup = "inspect" // read-only views of source files
	GroupSupport CommandGroup = "support" // version info, help
)

// Groups lists the command groups in help display order.
func Groups() []CommandGroup {
	return []CommandGroup{GroupMigrate, GroupInspect, GroupSupport}
}

// Title returns the help heading for the group.
func (g CommandGroup) Title() string {
	switch g {
	case GroupMigrate:
		return "Migration Commands"
	case GroupInspect:
		return "Inspection Commands"
	case GroupSupport:
		return "Support Commands"
	default:
		return string(g)
	}
}

// CommandRegistration represents a registered command with its classification
type CommandRegistration struct {
	Name        string
	Group       CommandGroup
	Command     *cobra.Command
	Description string
}

// Registry manages command classifications and registrations
type Registry struct {
	mu         sync.RWMutex
	commands   map[string]*CommandRegistration
	groupIndex map[CommandGroup][]*CommandRegistration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:   make(map[string]*CommandRegistration),
		groupIndex: make(map[CommandGroup][]*CommandRegistration),
	}
}

var globalRegistry = NewRegistry()

// GetRegistry returns the global command registry
func GetRegistry() *Registry {
	return globalRegistry
}

// RegisterCommand registers cmd in the global registry under its own name,
// using its Short text as the description.
func RegisterCommand(group CommandGroup, cmd *cobra.Command) error {
	return GetRegistry().Register(cmd.Name(), group, cmd, cmd.Short)
}

// Register adds a command to the registry
func (r *Registry) Register(name string, group CommandGroup, cmd *cobra.Command, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %s already registered", name)
	}

	registration := &CommandRegistration{
		Name:        name,
		Group:       group,
		Command:     cmd,
		Description: description,
	}

	r.commands[name] = registration
	r.groupIndex[group] = append(r.groupIndex[group], registration)
	return nil
}

// GetCommand returns a registered command by name
func (r *Registry) GetCommand(name string) (*CommandRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, exists := r.commands[name]
	return cmd, exists
}

// GetCommandsByGroup returns the commands of a group sorted by name
func (r *Registry) GetCommandsByGroup(group CommandGroup) []*CommandRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*CommandRegistration, len(r.groupIndex[group]))
	copy(out, r.groupIndex[group])
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
