// Package owl contains constants of the Web Ontology Language (OWL)
package owl

import "github.com/cayleygraph/quad/voc"

func init() {
	voc.RegisterPrefix(Prefix, NS)
}

const (
	NS     = `http://www.w3.org/2002/07/owl#`
	Prefix = `owl:`
)

const (
	Class           = NS + "Class"
	ObjectProperty  = NS + "ObjectProperty"
	EquivalentClass = NS + "equivalentClass"

	SymmetricProperty         = NS + "SymmetricProperty"
	FunctionalProperty        = NS + "FunctionalProperty"
	TransitiveProperty        = NS + "TransitiveProperty"
	InverseFunctionalProperty = NS + "InverseFunctionalProperty"
	ReflexiveProperty         = NS + "ReflexiveProperty"
	IrreflexiveProperty       = NS + "IrreflexiveProperty"
)
