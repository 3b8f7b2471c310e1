package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// newFCLayer adds a fully connected layer mapping in features to out
// features to the graph g. The index parameter names the layer's nodes
// within the graph.
func newFCLayer(g *G.ExprGraph, in, out, index int, bias bool,
	init G.InitWFn, act *Activation) *fcLayer {
	layer := &fcLayer{
		weights: G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(in, out),
			G.WithName(fmt.Sprintf("L%vW", index)),
			G.WithInit(init),
		),
		act: act,
	}
	if bias {
		layer.bias = G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(1, out),
			G.WithName(fmt.Sprintf("L%vB", index)),
			G.WithInit(G.Zeroes()),
		)
	}
	return layer
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x = G.Must(G.Mul(x, f.weights))
	if f.bias != nil {
		// Broadcast the bias weights to all samples along the batch
		// dimension
		x = G.Must(G.BroadcastAdd(x, f.bias, nil, []byte{0}))
	}
	if f.act == nil {
		return x, nil
	}
	return f.act.fwd(x)
}
