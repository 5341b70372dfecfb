package kdtree_test

import (
	"fmt"

	"github.com/viant/kdtree/kdtree"
)

func ExampleTree_FindClosest() {
	tree, err := kdtree.New[kdtree.Vector[float64], float64](3)
	if err != nil {
		panic(err)
	}
	err = tree.AddPoints(
		kdtree.Vector[float64]{0.5, 0.2, 0.1},
		kdtree.Vector[float64]{1, 1, 1},
		kdtree.Vector[float64]{-2, -2, -2},
	)
	if err != nil {
		panic(err)
	}
	found, err := tree.FindClosest(kdtree.Vector[float64]{0.5, 0.2, 0.1})
	if err != nil {
		panic(err)
	}
	fmt.Println(found.Point, found.Distance)
	// Output: [0.5 0.2 0.1] 0
}

func ExampleTree_FindNClosest() {
	tree, _ := kdtree.NewWithCapacity[kdtree.Point2[float64], float64](2, 4)
	_ = tree.AddPoints(
		kdtree.Point2[float64]{0, 0},
		kdtree.Point2[float64]{3, 4},
		kdtree.Point2[float64]{6, 8},
	)
	neighbors, _ := tree.FindNClosest(kdtree.Point2[float64]{0, 0}, 2)
	for _, n := range neighbors {
		fmt.Println(n.Point, n.Distance)
	}
	// Output:
	// [0 0] 0
	// [3 4] 5
}
