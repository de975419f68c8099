package types

import (
	"testing"

	"github.com/flowquant-lab/flowquant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type GraphTestSuite struct {
	suite.Suite
}

func TestGraphSuite(t *testing.T) {
	suite.Run(t, new(GraphTestSuite))
}

func validDefinition() StrategyDefinition {
	return StrategyDefinition{
		ID:   "strat-1",
		Name: "rsi reversal",
		Nodes: []Node{
			{ID: "price-1", Type: BlockTypePrice},
			{ID: "rsi-1", Type: BlockTypeRSI, Config: map[string]any{"period": 14}},
			{ID: "sig-1", Type: BlockTypeSignal},
		},
		Connections: []Connection{
			{FromNodeID: "price-1", FromPort: "prices", ToNodeID: "rsi-1", ToPort: "prices"},
			{FromNodeID: "rsi-1", FromPort: "result", ToNodeID: "sig-1", ToPort: "input"},
		},
	}
}

func (suite *GraphTestSuite) TestValidateOK() {
	d := validDefinition()
	suite.NoError(d.Validate())
}

func (suite *GraphTestSuite) TestValidateEmptyNodes() {
	d := StrategyDefinition{}
	err := d.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *GraphTestSuite) TestValidateDuplicateNodeID() {
	d := validDefinition()
	d.Nodes = append(d.Nodes, Node{ID: "rsi-1", Type: BlockTypeRSI})

	err := d.Validate()
	suite.Error(err)
	suite.Contains(err.Error(), "duplicate node id")
}

func (suite *GraphTestSuite) TestValidateUnknownNodeReference() {
	d := validDefinition()
	d.Connections = append(d.Connections, Connection{
		FromNodeID: "ghost", FromPort: "result", ToNodeID: "sig-1", ToPort: "other",
	})

	err := d.Validate()
	suite.Error(err)
	suite.Contains(err.Error(), "unknown node")
}

func (suite *GraphTestSuite) TestValidateDoubleProducer() {
	d := validDefinition()

	// A second producer for (rsi-1, prices) violates the single-producer rule
	d.Connections = append(d.Connections, Connection{
		FromNodeID: "sig-1", FromPort: "signal", ToNodeID: "rsi-1", ToPort: "prices",
	})

	err := d.Validate()
	suite.Error(err)
	suite.Contains(err.Error(), "at most one connection")
}

func (suite *GraphTestSuite) TestValidateFanOutAllowed() {
	d := validDefinition()

	// One output feeding two inputs is fine
	d.Nodes = append(d.Nodes, Node{ID: "ema-1", Type: BlockTypeEMA})
	d.Connections = append(d.Connections, Connection{
		FromNodeID: "price-1", FromPort: "prices", ToNodeID: "ema-1", ToPort: "prices",
	})

	suite.NoError(d.Validate())
}
