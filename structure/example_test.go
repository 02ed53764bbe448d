package structure_test

import (
	"fmt"

	"github.com/katalvlaran/trusstopo/structure"
)

// Example demonstrates building a three-node chain and removing its
// middle node, in the convention of one runnable
// Example per package documenting the common path.
func Example() {
	s := structure.New()
	s.AddNode(structure.NewNode(0, 0, 0))
	s.AddNode(structure.NewNode(1, 1, 0))
	s.AddNode(structure.NewNode(2, 2, 0))
	_ = s.AddSpring(structure.Spring{I: 0, J: 1, K: 100})
	_ = s.AddSpring(structure.Spring{I: 1, J: 2, K: 100})

	fmt.Println(s.TotalMass())
	fmt.Println(s.Degree(1))

	s.RemoveNode(1)
	fmt.Println(len(s.Springs))
	fmt.Println(s.Degree(0))

	// Output:
	// 3
	// 2
	// 0
	// 0
}
