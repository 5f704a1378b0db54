// Package abis holds the interface registry: the ordered set of contract interfaces whose calls
// the engine is willing to recognize.
package abis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Classification tags which interface a call decoded against. The set is closed; adding a value
// requires handling it in every switch over Classification.
type Classification int

const (
	Classification_LendingPool Classification = iota + 1
	Classification_FungibleToken
	Classification_FeeRouter
)

func (c Classification) String() string {
	switch c {
	case Classification_LendingPool:
		return "LendingPool"
	case Classification_FungibleToken:
		return "FungibleToken"
	case Classification_FeeRouter:
		return "FeeRouter"
	}
	return fmt.Sprintf("Classification(%d)", int(c))
}

func (c Classification) IsValid() bool {
	switch c {
	case Classification_LendingPool, Classification_FungibleToken, Classification_FeeRouter:
		return true
	}
	return false
}

type InterfaceDescriptor struct {
	Name           string
	Classification Classification
	Abi            *abi.ABI
}

type FunctionSignature struct {
	Name       string
	Selector   string
	Parameters []string
}

// Signatures lists the recognized functions sorted by name.
func (d *InterfaceDescriptor) Signatures() []FunctionSignature {
	sigs := make([]FunctionSignature, 0, len(d.Abi.Methods))
	for _, method := range d.Abi.Methods {
		params := make([]string, 0, len(method.Inputs))
		for _, input := range method.Inputs {
			params = append(params, input.Type.String())
		}
		sigs = append(sigs, FunctionSignature{
			Name:       method.RawName,
			Selector:   fmt.Sprintf("0x%x", method.ID),
			Parameters: params,
		})
	}
	sort.Slice(sigs, func(i, j int) bool {
		if sigs[i].Name == sigs[j].Name {
			return sigs[i].Selector < sigs[j].Selector
		}
		return sigs[i].Name < sigs[j].Name
	})
	return sigs
}

// Registry keeps descriptors in decode priority order. It is immutable after construction and
// safe to share between goroutines.
type Registry struct {
	interfaces *orderedmap.OrderedMap[Classification, *InterfaceDescriptor]
}

func NewRegistry(descriptors ...*InterfaceDescriptor) (*Registry, error) {
	om := orderedmap.New[Classification, *InterfaceDescriptor]()
	for _, d := range descriptors {
		if d == nil || d.Abi == nil {
			return nil, fmt.Errorf("interface descriptor is missing an abi")
		}
		if !d.Classification.IsValid() {
			return nil, fmt.Errorf("interface '%s' has invalid classification %d", d.Name, int(d.Classification))
		}
		if _, present := om.Set(d.Classification, d); present {
			return nil, fmt.Errorf("duplicate interface for classification %s", d.Classification)
		}
	}
	return &Registry{interfaces: om}, nil
}

// NewDefaultRegistry loads the built-in interfaces in priority order:
// lending pool, fungible token, fee router.
func NewDefaultRegistry() (*Registry, error) {
	defaults := []struct {
		name           string
		classification Classification
		json           string
	}{
		{"lendingPool", Classification_LendingPool, lendingPoolAbi},
		{"fungibleToken", Classification_FungibleToken, fungibleTokenAbi},
		{"feeRouter", Classification_FeeRouter, feeRouterAbi},
	}

	descriptors := make([]*InterfaceDescriptor, 0, len(defaults))
	for _, d := range defaults {
		a, err := ParseAbi(d.json)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s abi: %w", d.name, err)
		}
		descriptors = append(descriptors, &InterfaceDescriptor{
			Name:           d.name,
			Classification: d.classification,
			Abi:            a,
		})
	}
	return NewRegistry(descriptors...)
}

func MustNewDefaultRegistry() *Registry {
	r, err := NewDefaultRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// Interfaces returns descriptors in decode priority order.
func (r *Registry) Interfaces() []*InterfaceDescriptor {
	list := make([]*InterfaceDescriptor, 0, r.interfaces.Len())
	for pair := r.interfaces.Oldest(); pair != nil; pair = pair.Next() {
		list = append(list, pair.Value)
	}
	return list
}

func (r *Registry) Get(c Classification) (*InterfaceDescriptor, bool) {
	return r.interfaces.Get(c)
}

// errors the abi package raises for fragments we never decode against
var ignoredAbiErrors = []*regexp.Regexp{
	regexp.MustCompile(`only single receive is allowed`),
	regexp.MustCompile(`only single fallback is allowed`),
}

func ParseAbi(json string) (*abi.ABI, error) {
	a := &abi.ABI{}

	err := a.UnmarshalJSON([]byte(json))
	if err != nil {
		for _, pattern := range ignoredAbiErrors {
			if pattern.MatchString(err.Error()) {
				return a, nil
			}
		}
		return nil, err
	}
	if len(a.Methods) == 0 {
		return nil, fmt.Errorf("abi declares no functions: %s", strings.TrimSpace(truncate(json, 64)))
	}
	return a, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
