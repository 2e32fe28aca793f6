package constants

import (
	"math/rand"
)

type colors struct {
	Main  int
	Error int
	Good  int
	Info  int
}

var Colors = colors{
	Main:  0xfcb917,
	Error: 0xf03434,
	Good:  0x2ecc71,
	Info:  0xfef060,
}

func Random() int {
	return rand.Intn(0xffffff + 1)
}
