package main

import (
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/logger"
	circuit "github.com/kysee/zk-grandpa/circuits"
)

const rootDir = "."

// Default circuit shape: header buffer of ten 128-byte Blake2b chunks and a
// seven-validator quorum (2/3 + 1 of a ten-validator set).
const (
	defaultMaxHeaderBytes = 1280
	defaultNumValidators  = 7
)

func main() {
	if _, _, _, err := SetupCircuit(); err != nil {
		println("error", err.Error())
	}
}

func SetupCircuit() (constraint.ConstraintSystem, groth16.ProvingKey, groth16.VerifyingKey, error) {
	logger.Disable()

	_ = os.MkdirAll(filepath.Join(rootDir, ".build"), 0755)
	ccsPath := filepath.Join(rootDir, ".build/JustificationCircuit.ccs")
	pkPath := filepath.Join(rootDir, ".build/JustificationCircuit.pk")
	vkPath := filepath.Join(rootDir, ".build/JustificationCircuit.vk")

	//
	// Step 1: Compile circuit and save to file
	println("🕧 Compile JustificationCircuit circuit...")
	shape := circuit.NewJustificationCircuit(defaultMaxHeaderBytes, defaultNumValidators)
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, shape)
	if err != nil {
		return nil, nil, nil, err
	}

	println("Constraint system saving to", ccsPath, "...")
	fccs, _ := os.Create(ccsPath)
	defer fccs.Close()
	_, err = ccs.WriteTo(fccs)
	if err != nil {
		return nil, nil, nil, err
	}
	println("constraints:", ccs.GetNbConstraints(), "public inputs:", ccs.GetNbPublicVariables())
	println("✅ Compile complete")

	//
	// Step 2: Setup (generate proving and verifying keys)
	println("🕧 Generating proving and verifying keys...")
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, nil, err
	}

	println("Proving key saving to", pkPath, "...")
	fpk, _ := os.Create(pkPath)
	defer fpk.Close()
	_, err = pk.WriteTo(fpk)
	if err != nil {
		return nil, nil, nil, err
	}

	println("Verifying key saving to", vkPath, "...")
	fvk, _ := os.Create(vkPath)
	defer fvk.Close()
	_, err = vk.WriteTo(fvk)
	if err != nil {
		return nil, nil, nil, err
	}
	println("✅ Setup complete")

	return ccs, pk, vk, nil
}
