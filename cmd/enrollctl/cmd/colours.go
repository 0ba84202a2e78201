package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jrsteele09/go-enrollment-client/users"
)

var (
	Green  = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	Blue   = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}
	Amber  = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	Violet = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}
	Gray   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

var roleColours = map[users.RoleType]lipgloss.AdaptiveColor{
	users.RoleAdmin:           Violet,
	users.RoleClearingOfficer: Amber,
	users.RoleStudent:         Green,
}

func roleColour(role users.RoleType) lipgloss.AdaptiveColor {
	if c, ok := roleColours[role]; ok {
		return c
	}
	return Gray
}
