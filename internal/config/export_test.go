package config

// Parse exposes parse with an explicit environment.
var Parse = parse
