package totem

// Version is overridden at build time with -ldflags "-X github.com/aretw0/totem.Version=...".
var Version = "dev"
