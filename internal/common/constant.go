// Package common contains shared constants and sentinel errors used across
// gophrelease components.
package common

// AppName is used as the keyring service name and the env variable prefix root.
const AppName = "gophrelease"

// UserAgent is sent with every request to the remote content API.
const UserAgent = "System-Update-Manager"
