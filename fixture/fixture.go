// Package fixture runs vesting scenarios described in YAML.
//
// A scenario file holds one family of related cases. Each case
// names a schedule, the parties whose locks the transaction spends,
// the vesting input and output cells and the header dependencies,
// and the result code the vesting lock must produce. Scenarios are
// data: the same files drive the package tests and the
// `vestingd verify` command.
package fixture

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/blockberries/vesting"
	"github.com/blockberries/vesting/ledger"
	"github.com/blockberries/vesting/lock"
	vestingtest "github.com/blockberries/vesting/testing"
	"github.com/blockberries/vesting/types"
)

// Default party names. A scenario's signers refer to parties by
// these names unless it renames them.
const (
	DefaultCreator     = "creator"
	DefaultBeneficiary = "beneficiary"
)

// Suite is one scenario file.
type Suite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Scenarios   []Scenario `yaml:"scenarios"`

	// Path is the file the suite was loaded from.
	Path string `yaml:"-"`
}

// Scenario is a single vesting transaction and its expected result.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Creator and Beneficiary name the proxy locks whose hashes the
	// schedule records. Two parties with the same name share a lock.
	Creator     string `yaml:"creator,omitempty"`
	Beneficiary string `yaml:"beneficiary,omitempty"`

	Schedule Schedule `yaml:"schedule"`
	// Args replaces the encoded schedule with raw hex bytes.
	Args string `yaml:"args,omitempty"`
	// ArgsSize replaces the encoded schedule with that many zero bytes.
	ArgsSize int `yaml:"args_size,omitempty"`

	// Signers are the parties whose proxy locks guard additional
	// inputs of the transaction.
	Signers []string `yaml:"signers,omitempty"`
	Inputs  []Cell   `yaml:"inputs"`
	Outputs []Cell   `yaml:"outputs,omitempty"`
	Headers []Header `yaml:"headers,omitempty"`

	// Foreign cells belong to a second vesting record spent by the
	// same transaction.
	Foreign *Foreign `yaml:"foreign,omitempty"`

	// Expect is the name of the expected result code, "OK" for
	// acceptance.
	Expect string `yaml:"expect"`
}

// Schedule is the vesting schedule of a record.
type Schedule struct {
	Start uint64 `yaml:"start"`
	End   uint64 `yaml:"end"`
	Cliff uint64 `yaml:"cliff"`
}

// Cell is the data of a vesting cell. Data or Size, when set,
// replace the encoded state.
type Cell struct {
	Total              uint64 `yaml:"total"`
	BeneficiaryClaimed uint64 `yaml:"beneficiary_claimed"`
	CreatorClaimed     uint64 `yaml:"creator_claimed"`
	HighestBlockSeen   uint64 `yaml:"highest_block_seen"`

	Data string `yaml:"data,omitempty"`
	Size int    `yaml:"size,omitempty"`
}

// Header is a header dependency.
type Header struct {
	Number uint64 `yaml:"number"`
	Epoch  uint64 `yaml:"epoch"`
}

// Foreign describes a second vesting record in the transaction.
type Foreign struct {
	Schedule Schedule `yaml:"schedule"`
	Inputs   []Cell   `yaml:"inputs"`
	Outputs  []Cell   `yaml:"outputs,omitempty"`
}

// Load reads and validates a scenario file. Unknown fields are
// rejected so a typo cannot silently drop an expectation.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario file")
	}

	var suite Suite
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&suite); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if err := suite.validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid suite %s", path)
	}
	suite.Path = path
	return &suite, nil
}

// LoadDir loads every .yaml and .yml file under dir, in path order.
func LoadDir(dir string) ([]*Suite, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", dir)
	}
	sort.Strings(paths)

	suites := make([]*Suite, 0, len(paths))
	for _, p := range paths {
		s, err := Load(p)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	return suites, nil
}

func (s *Suite) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Scenarios) == 0 {
		return errors.New("scenarios list is required and must be non-empty")
	}
	seen := make(map[string]bool, len(s.Scenarios))
	for i := range s.Scenarios {
		sc := &s.Scenarios[i]
		if sc.Name == "" {
			return errors.Errorf("scenarios[%d]: name is required", i)
		}
		if seen[sc.Name] {
			return errors.Errorf("scenarios[%d]: duplicate name %q", i, sc.Name)
		}
		seen[sc.Name] = true
		if _, err := sc.Expected(); err != nil {
			return errors.Wrapf(err, "scenario %q", sc.Name)
		}
		if sc.Args != "" && sc.ArgsSize != 0 {
			return errors.Errorf("scenario %q: args and args_size are exclusive", sc.Name)
		}
	}
	return nil
}

// Expected returns the code the scenario expects.
func (sc *Scenario) Expected() (vesting.Code, error) {
	if sc.Expect == "" {
		return 0, errors.New("expect is required")
	}
	return vesting.ParseCode(sc.Expect)
}

func (sc *Scenario) party(name, fallback string) types.Script {
	if name == "" {
		name = fallback
	}
	return vestingtest.ProxyLock(name)
}

// LockArgs returns the vesting lock arguments of the scenario's
// record.
func (sc *Scenario) LockArgs() ([]byte, error) {
	switch {
	case sc.Args != "":
		b, err := hexutil.Decode(sc.Args)
		return b, errors.Wrap(err, "args")
	case sc.ArgsSize > 0:
		return make([]byte, sc.ArgsSize), nil
	}
	return sc.Schedule.args(
		sc.party(sc.Creator, DefaultCreator).Hash(),
		sc.party(sc.Beneficiary, DefaultBeneficiary).Hash(),
	), nil
}

func (s Schedule) args(creator, beneficiary types.Hash) []byte {
	return vestingtest.ConfigArgs(creator, beneficiary, s.Start, s.End, s.Cliff)
}

// Bytes returns the cell data.
func (c Cell) Bytes() ([]byte, error) {
	switch {
	case c.Data != "":
		b, err := hexutil.Decode(c.Data)
		return b, errors.Wrap(err, "cell data")
	case c.Size > 0:
		return make([]byte, c.Size), nil
	}
	return vestingtest.StateData(c.Total, c.BeneficiaryClaimed, c.CreatorClaimed, c.HighestBlockSeen), nil
}

// Transaction assembles the scenario's transaction and returns it
// with the vesting lock under test. Signer inputs come first, then
// the record's inputs, then the foreign record's inputs; outputs
// follow the same order.
func (sc *Scenario) Transaction() (*types.Transaction, types.Script, error) {
	args, err := sc.LockArgs()
	if err != nil {
		return nil, types.Script{}, err
	}
	b := vestingtest.NewTxBuilder(args)
	script := b.Script()

	for _, name := range sc.Signers {
		b.AuthInput(vestingtest.ProxyLock(name))
	}
	if err := addCells(b, sc.Inputs, (*vestingtest.TxBuilder).Input); err != nil {
		return nil, types.Script{}, errors.Wrap(err, "inputs")
	}

	var foreignArgs []byte
	if sc.Foreign != nil {
		// The foreign record swaps the parties so its lock hash differs
		// even when the schedules match.
		foreignArgs = sc.Foreign.Schedule.args(
			sc.party(sc.Beneficiary, DefaultBeneficiary).Hash(),
			sc.party(sc.Creator, DefaultCreator).Hash(),
		)
		b.Lock(foreignArgs)
		if err := addCells(b, sc.Foreign.Inputs, (*vestingtest.TxBuilder).Input); err != nil {
			return nil, types.Script{}, errors.Wrap(err, "foreign inputs")
		}
		b.Lock(args)
	}

	if err := addCells(b, sc.Outputs, (*vestingtest.TxBuilder).Output); err != nil {
		return nil, types.Script{}, errors.Wrap(err, "outputs")
	}
	if sc.Foreign != nil {
		b.Lock(foreignArgs)
		if err := addCells(b, sc.Foreign.Outputs, (*vestingtest.TxBuilder).Output); err != nil {
			return nil, types.Script{}, errors.Wrap(err, "foreign outputs")
		}
	}

	for _, h := range sc.Headers {
		b.Header(h.Number, h.Epoch)
	}
	return b.Build(), script, nil
}

func addCells(b *vestingtest.TxBuilder, cells []Cell, add func(*vestingtest.TxBuilder, []byte) *vestingtest.TxBuilder) error {
	for i, c := range cells {
		data, err := c.Bytes()
		if err != nil {
			return errors.Wrapf(err, "cell %d", i)
		}
		add(b, data)
	}
	return nil
}

// Result is the outcome of running one scenario.
type Result struct {
	Suite    string       `json:"suite"`
	Scenario string       `json:"scenario"`
	Expected vesting.Code `json:"-"`
	Code     vesting.Code `json:"-"`
	Want     string       `json:"expected"`
	Got      string       `json:"got"`
	Error    string       `json:"error,omitempty"`
	Pass     bool         `json:"pass"`
	// Report is set when the lock accepted the transaction.
	Report *lock.Report `json:"-"`
}

// Run verifies the scenario's transaction with the vesting lock.
// The returned error is for malformed scenarios only; a rule
// violation is reported in the Result.
func (sc *Scenario) Run() (Result, error) {
	want, err := sc.Expected()
	if err != nil {
		return Result{}, err
	}
	tx, script, err := sc.Transaction()
	if err != nil {
		return Result{}, err
	}

	report, verr := lock.Verify(ledger.NewMemory(tx, script))
	res := Result{
		Scenario: sc.Name,
		Expected: want,
		Code:     vesting.CodeOf(verr),
		Want:     want.String(),
	}
	res.Got = res.Code.String()
	res.Pass = res.Code == want
	if verr != nil {
		res.Error = verr.Error()
	} else {
		res.Report = &report
	}
	return res, nil
}

// Run runs every scenario of the suite in order.
func (s *Suite) Run() ([]Result, error) {
	results := make([]Result, 0, len(s.Scenarios))
	for i := range s.Scenarios {
		res, err := s.Scenarios[i].Run()
		if err != nil {
			return results, errors.Wrapf(err, "%s/%s", s.Name, s.Scenarios[i].Name)
		}
		res.Suite = s.Name
		results = append(results, res)
	}
	return results, nil
}
