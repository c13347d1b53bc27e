package internal

// Version is the lexicard release version
const Version = "0.3.1"
