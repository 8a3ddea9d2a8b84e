// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/tensor"
)

// Optimizer defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig contains configuration for the SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(
//	    model.Parameters(),
//	    optim.SGDConfig{
//	        LR:       0.01,
//	        Momentum: 0.9,
//	    },
//	)
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	return optim.NewSGD(params, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam[B tensor.Backend] = optim.Adam[B]

// AdamConfig contains configuration for the Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	optimizer := optim.NewAdam(
//	    model.Parameters(),
//	    optim.AdamConfig{
//	        LR:    0.001,
//	        Betas: [2]float32{0.9, 0.999},
//	        Eps:   1e-8,
//	    },
//	)
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	return optim.NewAdam(params, config)
}
