package metrics

import (
	"time"

	"github.com/blockberries/vesting"
)

// verifyBuckets spans per-block verification time, in seconds.
var verifyBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005,
	0.01, 0.025, 0.05, 0.1, 0.25, 1,
}

var (
	blockTxs = newMeter(func(b Backend) CounterVec {
		return b.CounterVec(Opts{"txs_total", "Block transactions verified, by result code."}, "result")
	})
	checkTxs = newMeter(func(b Backend) CounterVec {
		return b.CounterVec(Opts{"checktx_total", "Mempool gate checks, by result code."}, "result")
	})
	operations = newMeter(func(b Backend) CounterVec {
		return b.CounterVec(Opts{"operations_total", "Accepted lock groups, by operation."}, "operation")
	})
	blockVerify = newMeter(func(b Backend) Histogram {
		return b.Histogram(Opts{"block_verify_seconds", "Time to verify every transaction of a block."}, verifyBuckets)
	})
	height = newMeter(func(b Backend) Gauge {
		return b.Gauge(Opts{"height", "Height of the last committed block."})
	})
	simulations = newMeter(func(b Backend) Counter {
		return b.Counter(Opts{"simulations_total", "Simulate calls."})
	})
	unknownQueries = newMeter(func(b Backend) Counter {
		return b.Counter(Opts{"unknown_queries_total", "Queries for a path the verifier does not serve."})
	})
)

// TxVerified counts a block transaction by its result.
func TxVerified(code vesting.Code) { blockTxs.get().With(code.String()).Inc() }

// TxChecked counts a mempool gate check by its result.
func TxChecked(code vesting.Code) { checkTxs.get().With(code.String()).Inc() }

// OperationAccepted counts an accepted lock group.
func OperationAccepted(op string) { operations.get().With(op).Inc() }

func BlockVerified(d time.Duration) { blockVerify.get().Observe(d.Seconds()) }

func Committed(h uint64) { height.get().Set(float64(h)) }

func Simulated() { simulations.get().Inc() }

func UnknownQuery() { unknownQueries.get().Inc() }
