// Package mapid defines the closed registry of every logical table this
// module may open, flattened to a stable 16-bit identifier used as a key
// prefix component. Adding a table means appending to DataID — never
// inserting in the middle, never reordering — since the numeric values are
// part of the on-disk format.
package mapid

// DataID is the single flat enumeration backing every MapID variant. Its
// order is deliberate and append-only.
type DataID uint16

const (
	// Block group.
	BlockStateRootMap DataID = iota
	BlockReverseStateRootMap
	BlockIDMap
	BlockReverseIDMap
	BlockHeaderMap
	BlockTransactionsMap
	BlockConfirmedTransactionsMap

	// Deployment group.
	DeploymentIDMap
	DeploymentEditionMap
	DeploymentOwnerMap
	DeploymentProgramMap
	DeploymentVerifyingKeyMap
	DeploymentCertificateMap

	// Execution group.
	ExecutionIDMap
	ExecutionTransitionsMap
	ExecutionFeeMap

	// Fee group.
	FeeTransitionMap
	FeeGlobalStateRootMap
	FeeProofMap

	// Transaction group.
	TransactionIDMap
	TransactionTypeMap
	TransactionDeploymentMap
	TransactionExecutionMap

	// Transition group.
	TransitionProgramMap
	TransitionFunctionMap
	TransitionInputsMap
	TransitionOutputsMap
	TransitionTPKMap
	TransitionTCMMap
	TransitionFeeMap

	// TransitionInput group.
	TransitionInputIDMap
	TransitionInputConstantMap
	TransitionInputPublicMap
	TransitionInputPrivateMap
	TransitionInputRecordMap
	TransitionInputExternalRecordMap

	// TransitionOutput group.
	TransitionOutputIDMap
	TransitionOutputConstantMap
	TransitionOutputPublicMap
	TransitionOutputPrivateMap
	TransitionOutputRecordMap
	TransitionOutputExternalRecordMap

	// Program (finalize store) group.
	ProgramIDMap
	ProgramMappingIDMap
	ProgramKeyValueIDMap
	ProgramKeyMap
	ProgramValueMap

	// Test group. Rust's cfg(test) hides this from release builds; Go has
	// no visibility modifier with the same effect without splitting the
	// package by build tag, which would be disproportionate ceremony for
	// two IDs used only from this module's own _test.go files. It is
	// always compiled in, but by convention only ever constructed there.
	TestMapAID
	TestMapBID
)

// Uint16 returns the stable on-disk identifier for this DataID.
func (d DataID) Uint16() uint16 { return uint16(d) }

// BlockMap enumerates the Block group's tables.
type BlockMap uint16

const (
	BlockStateRoot             BlockMap = BlockMap(BlockStateRootMap)
	BlockReverseStateRoot      BlockMap = BlockMap(BlockReverseStateRootMap)
	BlockID                    BlockMap = BlockMap(BlockIDMap)
	BlockReverseID             BlockMap = BlockMap(BlockReverseIDMap)
	BlockHeader                BlockMap = BlockMap(BlockHeaderMap)
	BlockTransactions          BlockMap = BlockMap(BlockTransactionsMap)
	BlockConfirmedTransactions BlockMap = BlockMap(BlockConfirmedTransactionsMap)
)

// DeploymentMap enumerates the Deployment group's tables.
type DeploymentMap uint16

const (
	DeploymentID            DeploymentMap = DeploymentMap(DeploymentIDMap)
	DeploymentEdition       DeploymentMap = DeploymentMap(DeploymentEditionMap)
	DeploymentOwner         DeploymentMap = DeploymentMap(DeploymentOwnerMap)
	DeploymentProgram       DeploymentMap = DeploymentMap(DeploymentProgramMap)
	DeploymentVerifyingKey  DeploymentMap = DeploymentMap(DeploymentVerifyingKeyMap)
	DeploymentCertificate   DeploymentMap = DeploymentMap(DeploymentCertificateMap)
)

// ExecutionMap enumerates the Execution group's tables.
type ExecutionMap uint16

const (
	ExecutionID          ExecutionMap = ExecutionMap(ExecutionIDMap)
	ExecutionTransitions ExecutionMap = ExecutionMap(ExecutionTransitionsMap)
	ExecutionFee         ExecutionMap = ExecutionMap(ExecutionFeeMap)
)

// FeeMap enumerates the Fee group's tables.
type FeeMap uint16

const (
	FeeTransition      FeeMap = FeeMap(FeeTransitionMap)
	FeeGlobalStateRoot FeeMap = FeeMap(FeeGlobalStateRootMap)
	FeeProof           FeeMap = FeeMap(FeeProofMap)
)

// TransactionMap enumerates the Transaction group's tables.
type TransactionMap uint16

const (
	TransactionID         TransactionMap = TransactionMap(TransactionIDMap)
	TransactionType        TransactionMap = TransactionMap(TransactionTypeMap)
	TransactionDeployment TransactionMap = TransactionMap(TransactionDeploymentMap)
	TransactionExecution  TransactionMap = TransactionMap(TransactionExecutionMap)
)

// TransitionMap enumerates the Transition group's tables.
type TransitionMap uint16

const (
	TransitionProgram  TransitionMap = TransitionMap(TransitionProgramMap)
	TransitionFunction TransitionMap = TransitionMap(TransitionFunctionMap)
	TransitionInputs   TransitionMap = TransitionMap(TransitionInputsMap)
	TransitionOutputs  TransitionMap = TransitionMap(TransitionOutputsMap)
	TransitionTPK      TransitionMap = TransitionMap(TransitionTPKMap)
	TransitionTCM      TransitionMap = TransitionMap(TransitionTCMMap)
	TransitionFee      TransitionMap = TransitionMap(TransitionFeeMap)
)

// TransitionInputMap enumerates the TransitionInput group's tables.
type TransitionInputMap uint16

const (
	TransitionInputID             TransitionInputMap = TransitionInputMap(TransitionInputIDMap)
	TransitionInputConstant       TransitionInputMap = TransitionInputMap(TransitionInputConstantMap)
	TransitionInputPublic         TransitionInputMap = TransitionInputMap(TransitionInputPublicMap)
	TransitionInputPrivate        TransitionInputMap = TransitionInputMap(TransitionInputPrivateMap)
	TransitionInputRecord         TransitionInputMap = TransitionInputMap(TransitionInputRecordMap)
	TransitionInputExternalRecord TransitionInputMap = TransitionInputMap(TransitionInputExternalRecordMap)
)

// TransitionOutputMap enumerates the TransitionOutput group's tables.
type TransitionOutputMap uint16

const (
	TransitionOutputID             TransitionOutputMap = TransitionOutputMap(TransitionOutputIDMap)
	TransitionOutputConstant       TransitionOutputMap = TransitionOutputMap(TransitionOutputConstantMap)
	TransitionOutputPublic         TransitionOutputMap = TransitionOutputMap(TransitionOutputPublicMap)
	TransitionOutputPrivate        TransitionOutputMap = TransitionOutputMap(TransitionOutputPrivateMap)
	TransitionOutputRecord         TransitionOutputMap = TransitionOutputMap(TransitionOutputRecordMap)
	TransitionOutputExternalRecord TransitionOutputMap = TransitionOutputMap(TransitionOutputExternalRecordMap)
)

// ProgramMap enumerates the finalize store's constituent tables.
type ProgramMap uint16

const (
	ProgramID       ProgramMap = ProgramMap(ProgramIDMap)
	ProgramMappingID ProgramMap = ProgramMap(ProgramMappingIDMap)
	ProgramKeyValueID ProgramMap = ProgramMap(ProgramKeyValueIDMap)
	ProgramKey      ProgramMap = ProgramMap(ProgramKeyMap)
	ProgramValue    ProgramMap = ProgramMap(ProgramValueMap)
)

// TestMap enumerates the Test group's tables, used only by this module's
// own test suites.
type TestMap uint16

const (
	TestMapA TestMap = TestMap(TestMapAID)
	TestMapB TestMap = TestMap(TestMapBID)
)

// MapID is the public surface: a closed sum of group tags, each wrapping a
// subgroup enum whose values are drawn from DataID. Conversion to uint16 is
// total and unique, which is the flattening invariant the key-prefix layout
// (§3 of the design) depends on.
type MapID struct {
	group group
	value uint16
}

type group uint8

const (
	groupBlock group = iota
	groupDeployment
	groupExecution
	groupFee
	groupTransaction
	groupTransition
	groupTransitionInput
	groupTransitionOutput
	groupProgram
	groupTest
)

func NewBlock(m BlockMap) MapID               { return MapID{group: groupBlock, value: uint16(m)} }
func NewDeployment(m DeploymentMap) MapID     { return MapID{group: groupDeployment, value: uint16(m)} }
func NewExecution(m ExecutionMap) MapID       { return MapID{group: groupExecution, value: uint16(m)} }
func NewFee(m FeeMap) MapID                   { return MapID{group: groupFee, value: uint16(m)} }
func NewTransaction(m TransactionMap) MapID   { return MapID{group: groupTransaction, value: uint16(m)} }
func NewTransition(m TransitionMap) MapID     { return MapID{group: groupTransition, value: uint16(m)} }
func NewTransitionInput(m TransitionInputMap) MapID {
	return MapID{group: groupTransitionInput, value: uint16(m)}
}
func NewTransitionOutput(m TransitionOutputMap) MapID {
	return MapID{group: groupTransitionOutput, value: uint16(m)}
}
func NewProgram(m ProgramMap) MapID { return MapID{group: groupProgram, value: uint16(m)} }
func NewTest(m TestMap) MapID       { return MapID{group: groupTest, value: uint16(m)} }

// Uint16 returns the stable on-disk 16-bit identifier for this MapID. It is
// total and unique across every (group, table) pair: the value itself
// already came from the single flat DataID enumeration, so no group tag
// needs to be mixed in for the uniqueness invariant to hold.
func (m MapID) Uint16() uint16 { return m.value }
