// Package cpu implements a single hart RV32IMA processor for the rvemu machine.
//
// The CPU owns all architectural state: the program counter, 32 general
// purpose registers (x0 reads as zero), the machine mode CSR bank, the
// current privilege level, the LR/SC reservation, and the cycle and
// instret counters. Memory and devices are reached through a
// memory.Memory address space.
//
// Execution proceeds in batches with Run(). Pending interrupts are sampled
// once when a batch starts; synchronous exceptions end the batch. Either
// kind of trap goes through the same machine mode trap entry sequence, so
// architectural faults are never reported as Go errors.
package cpu
