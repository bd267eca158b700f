package packing_test

import (
	"fmt"

	"github.com/matzehuels/circlepack/pkg/packing"
)

func ExampleBuildModel() {
	spec, _ := packing.NewSpec(packing.DefaultDomain, 4)
	model, _ := packing.BuildModel(spec)

	fmt.Println("Variables:", model.NumVariables())
	fmt.Println("Constraints:", model.NumConstraints())
	fmt.Println("First pair:", model.Constraints()[8].Name())
	// Output:
	// Variables: 9
	// Constraints: 14
	// First pair: no_overlap[1,2]
}

func ExampleValidate() {
	spec, _ := packing.NewSpec(packing.DefaultDomain, 1)

	res, err := packing.Validate(spec, packing.Candidate{
		Centers: []packing.Circle{{X: 5, Y: 5}},
		Radius:  5,
	}, packing.DefaultTolerance)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("radius %.1f, density %.4f\n", res.Radius(), res.Density())

	_, err = packing.Validate(spec, packing.Candidate{
		Centers: []packing.Circle{{X: 4, Y: 5}},
		Radius:  5,
	}, packing.DefaultTolerance)
	fmt.Println(err)
	// Output:
	// radius 5.0, density 0.7854
	// VALIDATION_FAILED: packing breaks box_x[1].lower by 1 (tolerance 1e-06): constraint box_x[1].lower violated by 1
}
