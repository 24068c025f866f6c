package validation

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"digital.vasic.contracts/pkg/contract"
)

func numberList(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "|")
}

func TestAcceptedRejected_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	e := NewEngine()

	properties.Property("every accepted value passes", prop.ForAll(
		func(nums []int, pick int) bool {
			value := nums[pick%len(nums)]
			pc, err := contract.Parse("n=><number> acceptedValues=:[" + numberList(nums) + "]")
			if err != nil {
				return false
			}
			return e.ValidateParam(pc, 0, value).Passed
		},
		gen.SliceOfN(5, gen.IntRange(-1000, 1000)),
		gen.IntRange(0, 100),
	))

	properties.Property("every rejected value fails", prop.ForAll(
		func(nums []int, pick int) bool {
			value := nums[pick%len(nums)]
			pc, err := contract.Parse("n=><number> rejectedValues=:[" + numberList(nums) + "]")
			if err != nil {
				return false
			}
			return !e.ValidateParam(pc, 0, value).Passed
		},
		gen.SliceOfN(5, gen.IntRange(-1000, 1000)),
		gen.IntRange(0, 100),
	))

	properties.Property("unconstrained contracts pass on matching type", prop.ForAll(
		func(s string, n int, b bool) bool {
			for dsl, v := range map[string]any{
				"s=><string>":  s,
				"n=><number>":  n,
				"b=><boolean>": b,
			} {
				if !e.ValidateParam(mustParseProp(dsl), 0, v).Passed {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
		gen.Int(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func mustParseProp(dsl string) *contract.ParameterContract {
	c, err := contract.Parse(dsl)
	if err != nil {
		panic(fmt.Sprintf("parse %q: %v", dsl, err))
	}
	return c
}
