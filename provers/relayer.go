package relayer

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/std/math/uints"
	circuit "github.com/kysee/zk-grandpa/circuits"
	cfgtypes "github.com/kysee/zk-grandpa/provers/types"
	"github.com/kysee/zk-grandpa/types"
)

// Relayer owns the compiled justification circuit and turns
// (header, justification) pairs into Groth16 proofs. The circuit is compiled
// or loaded once; every proof reuses the constraint system and proving key
// with a fresh witness.
type Relayer struct {
	config *cfgtypes.Config
	ccs    constraint.ConstraintSystem
	pk     groth16.ProvingKey
}

// NewRelayer creates a Relayer for the given configuration.
func NewRelayer(config *cfgtypes.Config) (*Relayer, error) {
	if err := os.MkdirAll(filepath.Join(config.RootDir, ".build"), 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(config.RootDir, "output"), 0755); err != nil {
		return nil, err
	}
	return &Relayer{config: config}, nil
}

// SetupCircuit loads the compiled circuit and proving key from the build
// directory, compiling and running the Groth16 setup if they do not exist
// yet.
func (r *Relayer) SetupCircuit() error {
	if r.ccs != nil {
		log.Println("Circuit already loaded")
		return nil
	}

	ccsPath := filepath.Join(r.config.RootDir, ".build/JustificationCircuit.ccs")
	pkPath := filepath.Join(r.config.RootDir, ".build/JustificationCircuit.pk")

	if fileExists(ccsPath) && fileExists(pkPath) {
		log.Println("Loading JustificationCircuit...")
		fCcs, err := os.Open(ccsPath)
		if err != nil {
			return fmt.Errorf("failed to open CCS file: %w", err)
		}
		r.ccs = groth16.NewCS(ecc.BN254)
		_, err = r.ccs.ReadFrom(fCcs)
		_ = fCcs.Close()
		if err != nil {
			return fmt.Errorf("failed to read CCS: %w", err)
		}
		log.Printf("✓ Circuit loaded: %d constraints\n", r.ccs.GetNbConstraints())

		log.Println("Loading proving key...")
		fpk, err := os.Open(pkPath)
		if err != nil {
			return fmt.Errorf("failed to open PK file: %w", err)
		}
		r.pk = groth16.NewProvingKey(ecc.BN254)
		_, err = r.pk.ReadFrom(fpk)
		_ = fpk.Close()
		if err != nil {
			return fmt.Errorf("failed to read PK: %w", err)
		}
		log.Println("✓ Proving key loaded")
		return nil
	}

	log.Printf("Compiling JustificationCircuit (maxHeaderBytes=%d, validators=%d)...\n",
		r.config.MaxHeaderBytes, r.config.NumValidators)
	shape := circuit.NewJustificationCircuit(r.config.MaxHeaderBytes, r.config.NumValidators)
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, shape)
	if err != nil {
		return fmt.Errorf("failed to compile circuit: %w", err)
	}
	r.ccs = ccs
	log.Printf("✓ Compiled: %d constraints\n", ccs.GetNbConstraints())

	log.Println("Running Groth16 setup...")
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return fmt.Errorf("groth16 setup failed: %w", err)
	}
	r.pk = pk

	if err := writeTo(ccsPath, r.ccs); err != nil {
		return err
	}
	if err := writeTo(pkPath, pk); err != nil {
		return err
	}
	if err := writeTo(filepath.Join(r.config.RootDir, ".build/JustificationCircuit.vk"), vk); err != nil {
		return err
	}
	log.Println("✓ Setup complete")
	return nil
}

// GenerateProof validates a justification natively and, if it holds, proves
// it in-circuit. The returned proof is also persisted under output/.
func (r *Relayer) GenerateProof(encodedHeader []byte, justification *types.GrandpaJustification) (groth16.Proof, error) {
	if len(encodedHeader) > r.config.MaxHeaderBytes {
		return nil, fmt.Errorf("header is %d bytes, circuit limit is %d", len(encodedHeader), r.config.MaxHeaderBytes)
	}
	if len(encodedHeader) < circuit.MinHeaderBytes {
		return nil, fmt.Errorf("header is %d bytes, minimum is %d", len(encodedHeader), circuit.MinHeaderBytes)
	}

	header, err := types.ParseHeaderPrefix(encodedHeader)
	if err != nil {
		return nil, fmt.Errorf("malformed header: %w", err)
	}

	// Reject unprovable inputs before paying for a witness solve: the hash
	// and number in the commit must match the header, and every signature
	// must verify natively.
	blockHash := types.BlockHash(encodedHeader)
	if blockHash != justification.Commit.TargetHash {
		return nil, fmt.Errorf("header hash %x does not match commit target %x", blockHash, justification.Commit.TargetHash)
	}
	if uint64(justification.Commit.TargetNumber) != header.Number {
		return nil, fmt.Errorf("header number %d does not match commit target %d", header.Number, justification.Commit.TargetNumber)
	}
	precommits := justification.Commit.Precommits
	if len(precommits) < r.config.NumValidators {
		return nil, fmt.Errorf("justification has %d precommits, need %d", len(precommits), r.config.NumValidators)
	}
	precommits = precommits[:r.config.NumValidators]

	message := types.EncodePrecommitMessage(types.Precommit{
		TargetHash:   justification.Commit.TargetHash,
		TargetNumber: justification.Commit.TargetNumber,
	}, justification.Round, r.config.AuthoritySetID)

	assignment := circuit.NewJustificationCircuit(r.config.MaxHeaderBytes, r.config.NumValidators)
	for i := range assignment.EncodedHeader {
		if i < len(encodedHeader) {
			assignment.EncodedHeader[i] = uints.NewU8(encodedHeader[i])
		} else {
			assignment.EncodedHeader[i] = uints.NewU8(0)
		}
	}
	assignment.HeaderLength = len(encodedHeader)
	for i := 0; i < types.PrecommitMessageLength; i++ {
		assignment.EncodedMessage[i] = uints.NewU8(message[i])
	}

	for i, pc := range precommits {
		if pc.Precommit.TargetHash != justification.Commit.TargetHash ||
			pc.Precommit.TargetNumber != justification.Commit.TargetNumber {
			return nil, fmt.Errorf("precommit %d targets a different block", i)
		}
		if !types.VerifySignature(pc.ID[:], message[:], pc.Signature[:]) {
			return nil, fmt.Errorf("precommit %d signature does not verify", i)
		}

		rx, ry, err := types.DecompressPoint(pc.Signature[:32])
		if err != nil {
			return nil, fmt.Errorf("precommit %d signature R: %w", i, err)
		}
		s, err := types.SignatureScalar(pc.Signature[:])
		if err != nil {
			return nil, fmt.Errorf("precommit %d signature scalar: %w", i, err)
		}
		ax, ay, err := types.DecompressPoint(pc.ID[:])
		if err != nil {
			return nil, fmt.Errorf("precommit %d public key: %w", i, err)
		}
		assignment.Signatures[i] = circuit.NewEdDSASignature(rx, ry, s)
		assignment.PublicKeys[i] = circuit.NewEdDSAPublicKey(ax, ay)
	}

	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to create witness: %w", err)
	}

	log.Printf("Generating proof for block %d...\n", header.Number)
	start := time.Now()
	proof, err := groth16.Prove(r.ccs, r.pk, fullWitness)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	log.Printf("✓ Proof generated in %s\n", time.Since(start))

	outputPath := filepath.Join(r.config.RootDir, fmt.Sprintf("output/proof-block-%d.bin", header.Number))
	if err := writeTo(outputPath, proof); err != nil {
		return nil, err
	}
	log.Printf("✓ Proof saved to %s\n", outputPath)

	return proof, nil
}

func writeTo(path string, v io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := v.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
