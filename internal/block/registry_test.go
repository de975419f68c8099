package block

import (
	"testing"

	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
	registry Registry
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewRegistry()
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) TestRegisterAndGet() {
	suite.NoError(suite.registry.Register(NewEMA()))

	b, err := suite.registry.Get(types.BlockTypeEMA)
	suite.NoError(err)
	suite.Equal(types.BlockTypeEMA, b.Type())
}

func (suite *RegistryTestSuite) TestRegisterDuplicate() {
	suite.NoError(suite.registry.Register(NewEMA()))

	err := suite.registry.Register(NewEMA())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBlockAlreadyExists))
}

func (suite *RegistryTestSuite) TestGetMissing() {
	_, err := suite.registry.Get(types.BlockTypeRSI)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBlockNotFound))
}

func (suite *RegistryTestSuite) TestRemove() {
	suite.NoError(suite.registry.Register(NewRSI()))
	suite.NoError(suite.registry.Remove(types.BlockTypeRSI))

	_, err := suite.registry.Get(types.BlockTypeRSI)
	suite.Error(err)

	err = suite.registry.Remove(types.BlockTypeRSI)
	suite.True(errors.HasCode(err, errors.ErrCodeBlockNotFound))
}

func (suite *RegistryTestSuite) TestDefaultRegistryCoversAllTypes() {
	registry := NewDefaultRegistry()

	expected := []types.BlockType{
		types.BlockTypePrice,
		types.BlockTypeSMA,
		types.BlockTypeEMA,
		types.BlockTypeRSI,
		types.BlockTypeMACD,
		types.BlockTypeATR,
		types.BlockTypeBollingerBands,
		types.BlockTypeVWAP,
		types.BlockTypeStochastic,
		types.BlockTypeVolumeSpike,
		types.BlockTypeCompare,
		types.BlockTypeAnd,
		types.BlockTypeOr,
		types.BlockTypeSignal,
	}

	suite.Len(registry.List(), len(expected))

	for _, t := range expected {
		b, err := registry.Get(t)
		suite.NoError(err)
		suite.Equal(t, b.Type())
	}
}

func (suite *RegistryTestSuite) TestIsGate() {
	suite.True(IsGate(types.BlockTypeCompare))
	suite.True(IsGate(types.BlockTypeAnd))
	suite.True(IsGate(types.BlockTypeOr))
	suite.False(IsGate(types.BlockTypeEMA))
	suite.False(IsGate(types.BlockTypeSignal))
}
