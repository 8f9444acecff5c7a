// Package bayesopt implements a sequential Bayesian optimization policy:
// given an expensive black-box objective over a bounded continuous domain,
// it decides at each iteration which point to evaluate next, using a
// Gaussian Process surrogate and an acquisition function that balances
// exploration against exploitation.
//
// # Features
//
//   - Acquisition strategies: Expected Improvement ("gpei"), Probability
//     of Improvement ("gppi"), Upper Confidence Bound ("gpucb", the
//     default) and Thompson sampling ("thompson"), held in an explicit,
//     extensible Registry
//   - Hyperparameter marginalization: every observation triggers a fresh
//     round of hyperparameter sampling, and the retained draws are
//     averaged into a single ensemble index
//   - Global decision step: the index is maximized over the domain with a
//     derivative-free multi-start Nelder-Mead solver
//   - Pluggable collaborators: the surrogate, the hyperparameter sampler,
//     the box optimizer and the spectral posterior sampler are all
//     interfaces with working defaults
//
// # Usage
//
//	policy, err := bayesopt.NewPolicy(
//	    []bayesopt.Bound{{Low: 0, High: 1}},
//	    bayesopt.DefaultPolicyConfig(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for i := 0; i < 30; i++ {
//	    x, err := policy.Next()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    if err := policy.AddData(x, objective(x)); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
//	best, err := policy.Best()
//
// The first Next call returns the domain midpoint; every later call
// optimizes the acquisition index rebuilt by the preceding AddData.
//
// # Choosing an acquisition strategy
//
// 1. Upper Confidence Bound ("gpucb"):
//
//   - Default choice; the confidence width tightens as data accumulates
//
//   - Delta controls the confidence decay, Xi the overall scale
//
//     config := bayesopt.DefaultPolicyConfig()
//     config.AcqParams.Delta = 0.1
//     config.AcqParams.Xi = 0.2
//
// 2. Expected Improvement ("gpei"):
//
//   - Weighs both the probability and the magnitude of an improvement
//
//   - Xi adds a minimum-improvement margin (default 0)
//
//     config.Acquisition = "gpei"
//
// 3. Probability of Improvement ("gppi"):
//
//   - Conservative; scores only how likely an improvement is
//
//   - Xi defaults to 0.05
//
//     config.Acquisition = "gppi"
//
// 4. Thompson sampling ("thompson"):
//
//   - Scores with one random posterior function realization per rebuild
//
//   - NFeatures sets the spectral feature count (default 250)
//
//     config.Acquisition = "thompson"
//
// # Reproducibility
//
// All randomness flows through the generator in PolicyConfig.Rand. Set it
// to a seeded generator for deterministic runs; leaving it nil seeds from
// the wall clock.
//
// # Concurrency
//
// A Policy serializes AddData, Next and Best on one mutex, so the dataset
// append and the index swap are observed atomically. The decision loop is
// synchronous: a slow collaborator blocks the caller, and callers that
// need bounded latency must impose their own timeout around the call.
package bayesopt
