package beanfactory

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Order struct {
	ID   string
	Qty  int
	Note *string
}

func TestSelectPrefersBestMatchingConstructor(t *testing.T) {
	f := New()
	orderType := reflect.TypeOf(Order{})

	// Candidate A: (string) -> Order{ID: ...}
	f.Register(orderType, Constructor{
		ParamTypes: []reflect.Type{reflect.TypeOf("")},
		New: func(args []reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(Order{ID: args[0].String()}), nil
		},
	})
	// Candidate B: (string, int) -> Order{ID, Qty}
	f.Register(orderType, Constructor{
		ParamTypes: []reflect.Type{reflect.TypeOf(""), reflect.TypeOf(0)},
		New: func(args []reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(Order{ID: args[0].String(), Qty: int(args[1].Int())}), nil
		},
	})

	childTypes := []reflect.Type{reflect.TypeOf(""), reflect.TypeOf(0)}
	sel := Select(f, orderType, childTypes)
	require.NotNil(t, sel.Constructor)
	assert.Len(t, sel.Constructor.ParamTypes, 2)

	built, err := Build(orderType, sel, []reflect.Value{reflect.ValueOf("ord-1"), reflect.ValueOf(3)})
	require.NoError(t, err)
	order := built.Interface().(Order)
	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, 3, order.Qty)
}

func TestSelectFallsBackToZeroValue(t *testing.T) {
	f := New()
	orderType := reflect.TypeOf(Order{})
	sel := Select(f, orderType, nil)
	assert.Nil(t, sel.Constructor)

	built, err := Build(orderType, sel, nil)
	require.NoError(t, err)
	assert.Equal(t, Order{}, built.Interface())
}

func TestUnmatchedPenaltyDisqualifiesValueTypeParam(t *testing.T) {
	f := New()
	orderType := reflect.TypeOf(Order{})

	// A constructor requiring a mandatory int with no way to supply it
	// should lose to the zero-value fallback when no argument is available.
	f.Register(orderType, Constructor{
		ParamTypes: []reflect.Type{reflect.TypeOf(0)},
		New: func(args []reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(Order{Qty: int(args[0].Int())}), nil
		},
	})

	sel := Select(f, orderType, nil)
	assert.Nil(t, sel.Constructor, "a mandatory value-typed parameter with no argument should disqualify the constructor")
}

func TestBuildReportsConstructorError(t *testing.T) {
	f := New()
	orderType := reflect.TypeOf(Order{})
	f.Register(orderType, Constructor{
		ParamTypes: []reflect.Type{reflect.TypeOf("")},
		New: func(args []reflect.Value) (reflect.Value, error) {
			return reflect.Value{}, fmt.Errorf("boom")
		},
	})
	sel := Select(f, orderType, []reflect.Type{reflect.TypeOf("")})
	require.NotNil(t, sel.Constructor)
	_, err := Build(orderType, sel, []reflect.Value{reflect.ValueOf("x")})
	assert.Error(t, err)
}
