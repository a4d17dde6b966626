/*
Package submit turns one mailbox extraction into a batch of independent
order submissions.

Every product of every extracted order becomes exactly one creation request,
submitted in extraction order. The batch always runs to completion: a
product that fails (backend error or failed result) is recorded and the
loop moves on. The final status follows the trichotomy in the types
package: success, partial, or failed.
*/
package submit
