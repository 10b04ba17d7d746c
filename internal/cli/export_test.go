package cli

var DisplayWidth = displayWidth
