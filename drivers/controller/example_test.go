package controller

import (
	"fmt"

	"github.com/rovertronic/joybus/pif"
	"github.com/rovertronic/joybus/pif/joybus"
	"github.com/rovertronic/joybus/pif/piftest"
)

// Query the plugged devices once, hand out player numbers and start polling.
func Example() {
	pad := &piftest.Pad64{Buttons: joybus.ButtonA | joybus.ButtonStart, X: 42}

	reg := &Registry{}
	poller := NewPoller(pif.NewBus(piftest.New(pad)), reg, nil)

	mask, _, err := poller.PollStatus()
	if err != nil {
		fmt.Println("status poll:", err)
		return
	}
	player := uint8(1)
	for i := range reg {
		if mask&(1<<i) != 0 {
			reg[i].Player = player
			player++
		}
	}

	pads, err := poller.Poll()
	if err != nil {
		fmt.Println("poll:", err)
		return
	}
	fmt.Printf("plugged: %04b\n", mask)
	fmt.Printf("p1: [%v] %d/%d\n", pads[0].Buttons, pads[0].Stick.X, pads[0].Stick.Y)

	// Output:
	// plugged: 0001
	// p1: [A + Start] 42/0
}
