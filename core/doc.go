// Package core defines the conversation data model shared by the brain,
// tool and agent layers: role-based messages composed of ordered parts
// (text, tool calls, tool results) plus ID generation helpers.
package core
