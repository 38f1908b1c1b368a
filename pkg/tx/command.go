package tx

import (
	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"

	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// Command is one step of a programmable transaction.
type Command interface {
	serializable
	// arguments lists every argument the command consumes.
	arguments() []Argument
}

// MoveCall invokes Package::Module::Function.
type MoveCall struct {
	Package       types.ObjectID
	Module        string
	Function      string
	TypeArguments []TypeTag
	Arguments     []Argument
}

// TransferObjects sends Objects to the address held in Address.
type TransferObjects struct {
	Objects []Argument
	Address Argument
}

// SplitCoins splits one coin into len(Amounts) new coins.
type SplitCoins struct {
	Coin    Argument
	Amounts []Argument
}

// MergeCoins merges Sources into Destination.
type MergeCoins struct {
	Destination Argument
	Sources     []Argument
}

// Publish publishes a package.
type Publish struct {
	Modules      [][]byte
	Dependencies []types.ObjectID
}

// MakeMoveVec builds a vector. Type may be nil when Elements are objects.
type MakeMoveVec struct {
	Type     *TypeTag
	Elements []Argument
}

// Upgrade upgrades Package using an upgrade Ticket.
type Upgrade struct {
	Modules      [][]byte
	Dependencies []types.ObjectID
	Package      types.ObjectID
	Ticket       Argument
}

func (c MoveCall) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(0); err != nil {
		return err
	}
	if err := serializeObjectID(s, c.Package); err != nil {
		return err
	}
	if err := s.SerializeStr(c.Module); err != nil {
		return err
	}
	if err := s.SerializeStr(c.Function); err != nil {
		return err
	}
	if err := serializeSeq(s, c.TypeArguments); err != nil {
		return err
	}
	return serializeSeq(s, c.Arguments)
}

func (c TransferObjects) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(1); err != nil {
		return err
	}
	if err := serializeSeq(s, c.Objects); err != nil {
		return err
	}
	return c.Address.serialize(s)
}

func (c SplitCoins) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(2); err != nil {
		return err
	}
	if err := c.Coin.serialize(s); err != nil {
		return err
	}
	return serializeSeq(s, c.Amounts)
}

func (c MergeCoins) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(3); err != nil {
		return err
	}
	if err := c.Destination.serialize(s); err != nil {
		return err
	}
	return serializeSeq(s, c.Sources)
}

func (c Publish) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(4); err != nil {
		return err
	}
	if err := serializeModules(s, c.Modules); err != nil {
		return err
	}
	return serializeObjectIDs(s, c.Dependencies)
}

func (c MakeMoveVec) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(5); err != nil {
		return err
	}
	if err := s.SerializeOptionTag(c.Type != nil); err != nil {
		return err
	}
	if c.Type != nil {
		if err := c.Type.serialize(s); err != nil {
			return err
		}
	}
	return serializeSeq(s, c.Elements)
}

func (c Upgrade) serialize(s serde.Serializer) error {
	if err := s.SerializeVariantIndex(6); err != nil {
		return err
	}
	if err := serializeModules(s, c.Modules); err != nil {
		return err
	}
	if err := serializeObjectIDs(s, c.Dependencies); err != nil {
		return err
	}
	if err := serializeObjectID(s, c.Package); err != nil {
		return err
	}
	return c.Ticket.serialize(s)
}

func (c MoveCall) arguments() []Argument { return c.Arguments }

func (c TransferObjects) arguments() []Argument {
	return append(append([]Argument(nil), c.Objects...), c.Address)
}

func (c SplitCoins) arguments() []Argument {
	return append([]Argument{c.Coin}, c.Amounts...)
}

func (c MergeCoins) arguments() []Argument {
	return append([]Argument{c.Destination}, c.Sources...)
}

func (Publish) arguments() []Argument { return nil }

func (c MakeMoveVec) arguments() []Argument { return c.Elements }

func (c Upgrade) arguments() []Argument { return []Argument{c.Ticket} }
