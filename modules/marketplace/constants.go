package marketplace

const Version = "v0.1.0"
